package config

import (
	"fmt"
	"reflect"
)

// InvalidSettingsError é retornado quando LoadEnv recebe algo que não é um
// ponteiro para struct.
type InvalidSettingsError struct {
	Value reflect.Type
}

func (e *InvalidSettingsError) Error() string {
	if e.Value == nil {
		return "config: settings must be a pointer to struct, got nil"
	}
	if e.Value.Kind() != reflect.Ptr {
		return fmt.Sprintf("config: settings must be a pointer to struct, got %s", e.Value.Kind())
	}
	return fmt.Sprintf("config: settings must be a pointer to struct, got pointer to %s", e.Value.Elem().Kind())
}

// FieldError é retornado quando o valor de uma variável não pode ser
// convertido para o tipo do campo.
type FieldError struct {
	FieldName string
	EnvVar    string
	Value     string
	Err       error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("config: error setting field %s from env %s=%s: %v",
		e.FieldName, e.EnvVar, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// UnsupportedTypeError indica um campo com tag env de tipo não suportado.
type UnsupportedTypeError struct {
	Type reflect.Type
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("config: unsupported type %s", e.Type)
}
