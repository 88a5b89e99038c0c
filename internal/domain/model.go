package domain

import (
	"fmt"
	"strings"
)

// Model identifies a text-completion backend. The set is closed: every
// binding and every /ask invocation carries exactly one of these values.
type Model string

const (
	ModelGPT3      Model = "gpt3"
	ModelGPT4      Model = "gpt4"
	ModelAlpaca7B  Model = "alpaca_7b"
	ModelFalcon40B Model = "falcon_40b"
)

// TextModels returns all text-completion models in display order.
func TextModels() []Model {
	return []Model{ModelGPT3, ModelGPT4, ModelAlpaca7B, ModelFalcon40B}
}

// ParseModel maps a user-supplied string onto the closed model set.
// Matching is case-insensitive on the wire form.
func ParseModel(s string) (Model, error) {
	for _, m := range TextModels() {
		if string(m) == strings.ToLower(s) {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidModel, s)
}

func (m Model) String() string { return string(m) }

// ImageModel identifies an image-generation backend.
type ImageModel string

const (
	ImageModelProdia       ImageModel = "prodia"
	ImageModelPollinations ImageModel = "pollinations"
)

// ImageModels returns all image-generation models in display order.
func ImageModels() []ImageModel {
	return []ImageModel{ImageModelProdia, ImageModelPollinations}
}

// ParseImageModel maps a user-supplied string onto the image model set.
func ParseImageModel(s string) (ImageModel, error) {
	for _, m := range ImageModels() {
		if string(m) == strings.ToLower(s) {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidModel, s)
}

func (m ImageModel) String() string { return string(m) }
