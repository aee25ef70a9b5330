package cli

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"futures-testnet-bot/internal/model"
	"futures-testnet-bot/internal/validator"
)

const banner = `
  ____  _                            _____     _             _
 | __ )(_)_ __   __ _ _ __   ___ ___|_   _|__ | |_ _   _ _ __ ___  ___
 |  _ \| | '_ \ / _' | '_ \ / __/ _ \ | |/ _ \| __| | | | '__/ _ \/ __|
 | |_) | | | | | (_| | | | | (_|  __/ | | (_) | |_| |_| | | |  __/\__ \
 |____/|_|_| |_|\__,_|_| |_|\___\___| |_|\___/ \__|\__,_|_|  \___||___/

  Binance Futures Testnet order tool. Press Ctrl+D to abort.

`

type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(r io.Reader, w io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(r), out: w}
}

// ask prints label and reads one line. An empty answer yields def.
func (p *prompter) ask(label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", label)
	}

	line, err := p.in.ReadString('\n')
	line = strings.TrimSpace(line)
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	if line == "" {
		return def, nil
	}
	return line, nil
}

// askValid repeats the question until check accepts the answer.
func (p *prompter) askValid(label, def string, check func(string) error) (string, error) {
	for {
		answer, err := p.ask(label, def)
		if err != nil {
			return "", err
		}
		if err := check(answer); err != nil {
			fmt.Fprintf(p.out, "  %v\n", err)
			continue
		}
		return answer, nil
	}
}

// orderParams walks through every field. A wrong answer only re-asks that field.
func (p *prompter) orderParams() (model.OrderParams, error) {
	var in validator.OrderInput
	var err error

	in.Symbol, err = p.askValid("Symbol", "BTCUSDT", func(v string) error {
		_, err := validator.Symbol(v)
		return err
	})
	if err != nil {
		return model.OrderParams{}, err
	}

	in.Side, err = p.askValid("Side (BUY/SELL)", "BUY", func(v string) error {
		_, err := validator.Side(v)
		return err
	})
	if err != nil {
		return model.OrderParams{}, err
	}

	in.Type, err = p.askValid("Order type (MARKET/LIMIT)", "MARKET", func(v string) error {
		_, err := validator.Type(v)
		return err
	})
	if err != nil {
		return model.OrderParams{}, err
	}

	in.Quantity, err = p.askValid("Quantity", "", func(v string) error {
		_, err := validator.Quantity(v)
		return err
	})
	if err != nil {
		return model.OrderParams{}, err
	}

	orderType, _ := validator.Type(in.Type)
	if orderType == model.OrderTypeLimit {
		in.Price, err = p.askValid("Limit price", "", func(v string) error {
			_, err := validator.Price(v, orderType)
			return err
		})
		if err != nil {
			return model.OrderParams{}, err
		}
	}

	return validator.ValidateOrder(in)
}

// confirm defaults to no.
func (p *prompter) confirm(question string) (bool, error) {
	answer, err := p.ask(question+" (y/N)", "")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func sortedCopy(s []string) []string {
	out := append([]string(nil), s...)
	sort.Strings(out)
	return out
}
