package endpoint

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Nomes dos serviços da tabela padrão.
const (
	ServiceIdentity  = "IDENTITY"
	ServiceMessaging = "MESSAGING"
	ServiceObjects   = "OBJECTS"
	ServiceLambda    = "LAMBDA"
)

const (
	nonProdBase = "https://cpaas.star2star.net"
	prodBase    = "https://cpaas.star2star.com/api"
)

// Table mapeia SERVIÇO -> ambiente -> URI base.
type Table map[string]map[Environment]string

// DefaultTable retorna a tabela embutida dos microserviços CPaaS.
func DefaultTable() Table {
	t := make(Table)
	for _, svc := range []string{ServiceIdentity, ServiceMessaging, ServiceObjects, ServiceLambda} {
		path := strings.ToLower(svc)
		t[svc] = map[Environment]string{
			Dev:   nonProdBase + "/" + path,
			Test:  nonProdBase + "/" + path,
			Stage: nonProdBase + "/" + path,
			Prod:  prodBase + "/" + path,
		}
	}
	return t
}

// Clone devolve uma cópia profunda com os nomes de serviço em maiúsculas.
// Nomes que só diferem no case (rejeitados por Validate) ficam com a primeira
// grafia em ordem alfabética.
func (t Table) Clone() Table {
	out := make(Table, len(t))
	for _, svc := range t.Services() {
		key := strings.ToUpper(svc)
		if _, dup := out[key]; dup {
			continue
		}
		envs := t[svc]
		cp := make(map[Environment]string, len(envs))
		for env, uri := range envs {
			cp[env] = uri
		}
		out[key] = cp
	}
	return out
}

// duplicates lista os serviços cujo nome colide com outro ignorando o case.
func (t Table) duplicates() []string {
	seen := make(map[string]string, len(t))
	var dups []string
	for _, svc := range t.Services() {
		key := strings.ToUpper(svc)
		if first, ok := seen[key]; ok {
			dups = append(dups, fmt.Sprintf("serviço duplicado '%s' (já definido como '%s')", svc, first))
			continue
		}
		seen[key] = svc
	}
	return dups
}

// Services retorna os nomes dos serviços em ordem alfabética.
func (t Table) Services() []string {
	names := make([]string, 0, len(t))
	for svc := range t {
		names = append(names, svc)
	}
	sort.Strings(names)
	return names
}

var validate = validator.New()

// Validate garante que todo serviço tenha uma URI válida para cada ambiente.
func (t Table) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("tabela de endpoints vazia")
	}

	errMsgs := t.duplicates()
	for _, svc := range t.Services() {
		if strings.TrimSpace(svc) == "" {
			errMsgs = append(errMsgs, "serviço sem nome")
			continue
		}
		envs := t[svc]
		for env := range envs {
			if !env.Valid() {
				errMsgs = append(errMsgs, fmt.Sprintf("%s: ambiente desconhecido '%s'", svc, env))
			}
		}
		for _, env := range Environments() {
			if err := validate.Var(envs[env], "required,url"); err != nil {
				errMsgs = append(errMsgs, fmt.Sprintf("%s.%s: URI '%s' falhou na regra '%s'", svc, env, envs[env], ruleOf(err)))
			}
		}
	}

	if len(errMsgs) > 0 {
		return fmt.Errorf("tabela de endpoints inválida:\n- %s", strings.Join(errMsgs, "\n- "))
	}
	return nil
}

func ruleOf(err error) string {
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		return verrs[0].Tag()
	}
	return err.Error()
}
