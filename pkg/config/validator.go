package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type SettingsValidator struct {
	validate *validator.Validate
}

// NewValidator cria uma nova instância do validador
func NewValidator() *SettingsValidator {
	return &SettingsValidator{
		validate: validator.New(),
	}
}

// Validate realiza validações estruturais (tags) e semânticas (lógica)
func (sv *SettingsValidator) Validate(cfg *Settings) error {
	if cfg == nil {
		return errors.New("settings nulo")
	}

	// 1. Validação Estrutural (Tags do struct: required, oneof, etc)
	if err := sv.validate.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			var errMsgs []string
			for _, e := range validationErrors {
				errMsgs = append(errMsgs, fmt.Sprintf("Campo '%s' falhou na regra '%s'", e.Namespace(), e.Tag()))
			}
			return fmt.Errorf("erros de validação estrutural:\n- %s", strings.Join(errMsgs, "\n- "))
		}
		return fmt.Errorf("erro de validação estrutural: %w", err)
	}

	// 2. Validação Semântica
	if err := sv.validateSemantics(cfg); err != nil {
		return fmt.Errorf("erro de validação semântica: %w", err)
	}

	return nil
}

func (sv *SettingsValidator) validateSemantics(cfg *Settings) error {
	if cfg.Runtime == "local" && cfg.Port == 0 {
		return fmt.Errorf("runtime 'local' exige uma porta (PORT)")
	}

	// Uma referência que sobreviveu à injeção indica fonte ausente
	if strings.Contains(cfg.APIKey, "${") {
		return fmt.Errorf("CPAAS_API_KEY contém referência não resolvida: %s", cfg.APIKey)
	}

	return nil
}
