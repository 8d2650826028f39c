package command

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"campuscomplaint/internal/api"
	"campuscomplaint/internal/complaint"
	"campuscomplaint/internal/model"
	"campuscomplaint/internal/session"
)

// FieldType describes input type.
type FieldType int

const (
	FieldString FieldType = iota
	FieldInt
	FieldInt64
	FieldFloat
	FieldInt64List
	FieldDate
	FieldFile
)

// Field defines a CLI input field.
type Field struct {
	Name     string
	Aliases  []string
	Prompt   string
	Type     FieldType
	Required bool
	// Secret hides the typed value when prompting.
	Secret bool
}

// Env is what command handlers operate on. One Env lives for the whole REPL session.
type Env struct {
	Client   *api.Client
	Session  *session.Manager
	Flow     *complaint.Flow
	PageSize int

	// listing is the last complaint listing, continued by "complaint more".
	listing *api.Pager[model.Complaint]
}

// Handler runs one command and returns the value to print.
type Handler func(ctx context.Context, env *Env, params Params) (any, error)

// Command defines a CLI command binding.
type Command struct {
	Service string
	Action  string
	Summary string
	Fields  []Field
	Run     Handler
}

// Key is the registry key of the command.
func (c Command) Key() string {
	return c.Service + " " + c.Action
}

// Params holds parsed input params.
type Params map[string]string

func (p Params) Get(key string) string {
	return p[strings.ToLower(key)]
}

func (p Params) Set(key, value string) {
	p[strings.ToLower(key)] = value
}

func (p Params) Has(key string) bool {
	_, ok := p[strings.ToLower(key)]
	return ok
}

func (p Params) Canonicalize(fields []Field) {
	for _, field := range fields {
		for _, alias := range field.Aliases {
			aliasKey := strings.ToLower(alias)
			if value, ok := p[aliasKey]; ok {
				p[strings.ToLower(field.Name)] = value
				delete(p, aliasKey)
			}
		}
	}
}

// Check validates every present value against its field type.
func (p Params) Check(fields []Field) error {
	for _, field := range fields {
		value := p.Get(field.Name)
		if value == "" {
			continue
		}
		var err error
		switch field.Type {
		case FieldInt:
			_, err = ParseInt(value)
		case FieldInt64:
			_, err = ParseInt64(value)
		case FieldFloat:
			_, err = ParseFloat(value)
		case FieldInt64List:
			_, err = ParseInt64List(value)
		case FieldDate:
			_, err = ParseDate(value)
		}
		if err != nil {
			return fmt.Errorf("invalid %s: %w", field.Name, err)
		}
	}
	return nil
}

// IntOr returns the integer value of key, or fallback when absent or malformed.
func (p Params) IntOr(key string, fallback int) int {
	n, err := ParseInt(p.Get(key))
	if err != nil {
		return fallback
	}
	return n
}

func ParseInt64(value string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(value), 10, 64)
}

func ParseInt(value string) (int, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 32)
	return int(n), err
}

func ParseFloat(value string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(value), 64)
}

// ParseDate accepts YYYY-MM-DD.
func ParseDate(value string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(value))
}

func ParseStringList(value string) []string {
	raw := strings.Split(value, ",")
	result := make([]string, 0, len(raw))
	for _, item := range raw {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}

func ParseInt64List(value string) ([]int64, error) {
	items := ParseStringList(value)
	result := make([]int64, 0, len(items))
	for _, item := range items {
		n, err := ParseInt64(item)
		if err != nil {
			return nil, fmt.Errorf("invalid id list value: %w", err)
		}
		result = append(result, n)
	}
	return result, nil
}
