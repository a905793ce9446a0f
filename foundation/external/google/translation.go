// Package google translates advice text with Google Cloud Translation.
package google

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"
)

const translationTimeout = 5 * time.Second

type Translation struct {
	TargetTag language.Tag
	SourceTag language.Tag
	Client    *translate.Client
}

func NewTranslation(credentialsPath, sourceLanguageCode, targetLanguageCode string) (*Translation, error) {
	sourceTag, err := language.Parse(sourceLanguageCode)
	if err != nil {
		return nil, fmt.Errorf("incorrect source language code: %w", err)
	}

	targetTag, err := language.Parse(targetLanguageCode)
	if err != nil {
		return nil, fmt.Errorf("incorrect target language code: %w", err)
	}

	var opts []option.ClientOption
	if credentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}

	client, err := translate.NewClient(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create google translate client: %w", err)
	}

	t := Translation{
		TargetTag: targetTag,
		SourceTag: sourceTag,
		Client:    client,
	}
	return &t, nil
}

// Translate translates texts in one request, preserving order.
func (t *Translation) Translate(ctx context.Context, texts []string) ([]string, error) {
	if len(texts) == 0 || t.SourceTag == t.TargetTag {
		return texts, nil
	}

	ctx, cancel := context.WithTimeout(ctx, translationTimeout)
	defer cancel()

	opts := translate.Options{
		Source: t.SourceTag,
		Format: translate.Text,
	}

	resp, err := t.Client.Translate(ctx, texts, t.TargetTag, &opts)
	if err != nil {
		return nil, fmt.Errorf("unable to translate text: %w", err)
	}

	out := make([]string, len(resp))
	for i, r := range resp {
		out[i] = r.Text
	}
	return out, nil
}

func (t *Translation) Close() error {
	return t.Client.Close()
}
