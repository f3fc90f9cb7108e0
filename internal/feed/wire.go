package feed

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// bookMessage is an inbound l2Book frame.
type bookMessage struct {
	Channel string `json:"channel"`
	Data    struct {
		Coin   string        `json:"coin"`
		Levels [][]wireLevel `json:"levels"`
		Time   int64         `json:"time"`
	} `json:"data"`
}

// wireLevel accepts both shapes the stream uses for one book level:
// tagged fields {"px":"100.5","sz":"2"} and positional ["100.5","2"].
// Prices and sizes arrive as strings or numbers.
type wireLevel struct {
	Px float64
	Sz float64
}

func (l *wireLevel) UnmarshalJSON(data []byte) error {
	for _, c := range data {
		switch c {
		case ' ', '\t', '\n', '\r':
			continue
		case '{':
			var tagged struct {
				Px flexNum `json:"px"`
				Sz flexNum `json:"sz"`
			}
			if err := json.Unmarshal(data, &tagged); err != nil {
				return err
			}
			l.Px, l.Sz = float64(tagged.Px), float64(tagged.Sz)
			return nil
		case '[':
			var pos []flexNum
			if err := json.Unmarshal(data, &pos); err != nil {
				return err
			}
			if len(pos) < 2 {
				return fmt.Errorf("level needs price and size, got %d elements", len(pos))
			}
			l.Px, l.Sz = float64(pos[0]), float64(pos[1])
			return nil
		default:
			return fmt.Errorf("unexpected level shape: %s", data)
		}
	}
	return fmt.Errorf("empty level")
}

// flexNum decodes a JSON string or number into a float64.
type flexNum float64

func (n *flexNum) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*n = flexNum(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = flexNum(f)
	return nil
}
