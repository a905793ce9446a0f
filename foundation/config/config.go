// Package config loads the emotion advice tables.
package config

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

//go:embed defaults/*.json
var defaults embed.FS

const (
	defaultResponses = "defaults/responses.json"
	defaultEmotions  = "defaults/emotions.json"
	defaultTips      = "defaults/tips.json"
)

// GetTables reads the advice tables named by p.
func GetTables(p Paths) (Tables, error) {
	var advice map[string][]string
	if err := decode(p.Responses, defaultResponses, &advice); err != nil {
		return Tables{}, fmt.Errorf("responses: %w", err)
	}

	var seeds []seed
	if err := decode(p.Emotions, defaultEmotions, &seeds); err != nil {
		return Tables{}, fmt.Errorf("emotions: %w", err)
	}

	var tips []string
	if err := decode(p.Tips, defaultTips, &tips); err != nil {
		return Tables{}, fmt.Errorf("tips: %w", err)
	}

	t := Tables{
		Order:  make([]string, 0, len(seeds)),
		Advice: make(map[string][]string, len(advice)),
		Tips:   tips,
	}

	for _, s := range seeds {
		t.Order = append(t.Order, strings.ToLower(s.Name))
	}

	for k, v := range advice {
		t.Advice[strings.ToLower(k)] = v
	}

	if err := t.Validate(); err != nil {
		return Tables{}, err
	}

	return t, nil
}

// Default returns the embedded tables.
func Default() Tables {
	t, err := GetTables(Paths{})
	if err != nil {
		panic(err)
	}
	return t
}

// Validate checks the tables can serve advice.
func (t Tables) Validate() error {
	if len(t.Order) == 0 {
		return errors.New("emotion order is empty")
	}
	if len(t.Tips) == 0 {
		return errors.New("wellness tip list is empty")
	}
	return nil
}

// =================================================================================================================

func decode(path, fallback string, v any) error {
	var bytes []byte
	var err error

	if path == "" {
		bytes, err = defaults.ReadFile(fallback)
	} else {
		bytes, err = readFile(path)
	}
	if err != nil {
		return err
	}

	return json.Unmarshal(bytes, v)
}

func readFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return io.ReadAll(file)
}
