package endpoint

import (
	"fmt"
	"strings"
)

// Environment é um ambiente CPaaS válido.
type Environment string

const (
	Dev   Environment = "dev"
	Test  Environment = "test"
	Stage Environment = "stage"
	Prod  Environment = "prod"
)

// DefaultEnvironment é usado quando o ambiente informado é inválido.
const DefaultEnvironment = Prod

// Environments retorna os ambientes válidos, na ordem de promoção.
func Environments() []Environment {
	return []Environment{Dev, Test, Stage, Prod}
}

// Valid informa se o ambiente é reconhecido.
func (e Environment) Valid() bool {
	switch e {
	case Dev, Test, Stage, Prod:
		return true
	}
	return false
}

// Diagnostic descreve a correção aplicada a um ambiente inválido.
type Diagnostic struct {
	Input   string
	Applied Environment
}

func (d *Diagnostic) String() string {
	names := make([]string, 0, 4)
	for _, e := range Environments() {
		names = append(names, string(e))
	}
	return fmt.Sprintf("ambiente inválido: %q; não é um de [%s]; usando %s",
		d.Input, strings.Join(names, ", "), d.Applied)
}

// ParseEnvironment valida o ambiente informado. A comparação é exata.
// Vazio significa "não informado" e resulta em prod sem diagnóstico.
// Valores inválidos resultam em prod e um diagnóstico não nulo, que cabe ao
// chamador registrar.
func ParseEnvironment(s string) (Environment, *Diagnostic) {
	if s == "" {
		return DefaultEnvironment, nil
	}
	env := Environment(s)
	if env.Valid() {
		return env, nil
	}
	return DefaultEnvironment, &Diagnostic{Input: s, Applied: DefaultEnvironment}
}
