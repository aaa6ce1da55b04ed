package main

import (
	"encoding/json"
	"fmt"

	"github.com/raywall/cpaas-toolkit/api"
	"github.com/raywall/cpaas-toolkit/endpoint"
	"github.com/raywall/cpaas-toolkit/variables"
	"github.com/spf13/cobra"
)

func newEndpointCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "endpoint [service]",
		Short: "Resolve a URI base de um serviço (sem argumento lista a tabela)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lg := root.logger(cmd)
			resolver, err := root.resolver(cmd.Context(), lg)
			if err != nil {
				return err
			}

			if len(args) == 0 {
				return printJSON(cmd.OutOrStdout(), resolver.Table())
			}

			env, diag := endpoint.ParseEnvironment(root.env)
			if diag != nil {
				lg.Warn().Str("env", diag.Input).Msg(diag.String())
			}
			uri, ok := resolver.Lookup(env, args[0])
			if !ok {
				return fmt.Errorf("serviço desconhecido: %s", args[0])
			}
			return printJSON(cmd.OutOrStdout(), map[string]string{
				"service":     args[0],
				"environment": string(env),
				"uri":         uri,
			})
		},
	}
}

type renderOptions struct {
	template string
	treeFile string
	truthy   bool
}

func newRenderCmd() *cobra.Command {
	opts := renderOptions{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Resolve os placeholders %token% de um template contra uma árvore JSON/YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var tree variables.OrderedTree
			if opts.treeFile != "" {
				data, err := readInput(cmd, opts.treeFile)
				if err != nil {
					return err
				}
				if tree, err = variables.ParseTree(data); err != nil {
					return err
				}
			}

			var ropts []variables.Option
			if opts.truthy {
				ropts = append(ropts, variables.WithTruthyMatches())
			}
			out := variables.NewResolver(ropts...).Replace(opts.template, tree)
			_, err := fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}
	fs := cmd.Flags()
	fs.StringVarP(&opts.template, "template", "t", "", "template com placeholders")
	fs.StringVar(&opts.treeFile, "tree-file", "", "arquivo JSON/YAML com a árvore (- para stdin)")
	fs.BoolVar(&opts.truthy, "truthy", false, "trata valores falsos (\"\", 0, false, null) como ausentes")
	_ = cmd.MarkFlagRequired("template")
	return cmd
}

func newIdentityCmd(root *rootOptions) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "identity",
		Short: "Autentica email e senha no serviço de identidade",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, apiKey, err := root.client(cmd)
			if err != nil {
				return err
			}
			identity, err := client.GetIdentity(cmd.Context(), apiKey, email, password)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), identity.Raw)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email do usuário")
	cmd.Flags().StringVar(&password, "password", "", "senha do usuário")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newSMSCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sms",
		Short: "Número sms e envio de mensagens",
	}

	number := &cobra.Command{
		Use:   "number <user-uuid>",
		Short: "Mostra o número sms de uma identidade",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, apiKey, err := root.client(cmd)
			if err != nil {
				return err
			}
			sms, err := client.GetSMSNumber(cmd.Context(), apiKey, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]string{"user_uuid": args[0], "sms": sms})
		},
	}

	var user, from, to, msg string
	send := &cobra.Command{
		Use:   "send",
		Short: "Envia um sms (sem --from usa o número sms da identidade)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, apiKey, err := root.client(cmd)
			if err != nil {
				return err
			}
			sender := from
			if sender == "" {
				if sender, err = client.GetSMSNumber(cmd.Context(), apiKey, user); err != nil {
					return err
				}
			}
			sent, err := client.SendSMS(cmd.Context(), apiKey, user, msg, sender, to)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), sent)
		},
	}
	send.Flags().StringVar(&user, "user", "", "uuid do usuário remetente")
	send.Flags().StringVar(&from, "from", "", "número de origem")
	send.Flags().StringVar(&to, "to", "", "número de destino")
	send.Flags().StringVar(&msg, "msg", "", "texto da mensagem")
	for _, f := range []string{"user", "to", "msg"} {
		_ = send.MarkFlagRequired(f)
	}

	cmd.AddCommand(number, send)
	return cmd
}

type objectsOptions struct {
	user        string
	token       string
	objectType  string
	loadContent bool
}

func newObjectsCmd(root *rootOptions) *cobra.Command {
	opts := objectsOptions{}
	cmd := &cobra.Command{
		Use:   "objects",
		Short: "Consulta data objects",
	}
	cmd.PersistentFlags().StringVar(&opts.user, "user", "", "uuid do usuário (X-User-uuid)")
	cmd.PersistentFlags().StringVar(&opts.token, "token", "", "JWT da identidade")
	_ = cmd.MarkPersistentFlagRequired("token")

	list := &cobra.Command{
		Use:   "list",
		Short: "Lista os data objects de um tipo",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, apiKey, err := root.client(cmd)
			if err != nil {
				return err
			}
			out, err := client.GetDataObjectByType(cmd.Context(), apiKey, opts.user, opts.token, opts.objectType, opts.loadContent)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	list.Flags().StringVar(&opts.objectType, "type", api.DefaultObjectType, "tipo do objeto")
	list.Flags().BoolVar(&opts.loadContent, "load-content", false, "carrega o conteúdo dos objetos")

	get := &cobra.Command{
		Use:   "get <object-uuid>",
		Short: "Busca um data object pelo uuid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, apiKey, err := root.client(cmd)
			if err != nil {
				return err
			}
			out, err := client.GetDataObject(cmd.Context(), apiKey, opts.user, opts.token, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.AddCommand(list, get)
	return cmd
}

func newLambdaCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lambda",
		Short: "Executa lambdas CPaaS",
	}

	var params string
	invoke := &cobra.Command{
		Use:   "invoke <name>",
		Short: "Invoca uma lambda com parâmetros JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var body interface{}
			if params != "" {
				if err := json.Unmarshal([]byte(params), &body); err != nil {
					return fmt.Errorf("--params não é JSON válido: %w", err)
				}
			}

			client, apiKey, err := root.client(cmd)
			if err != nil {
				return err
			}
			out, err := client.InvokeLambda(cmd.Context(), apiKey, args[0], body)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	invoke.Flags().StringVar(&params, "params", "", "parâmetros JSON da lambda")

	cmd.AddCommand(invoke)
	return cmd
}

func newPipelineCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Executa pipelines de chamadas CPaaS",
	}

	var file, inputFile string
	run := &cobra.Command{
		Use:   "run",
		Short: "Executa os steps de um arquivo YAML/JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, file)
			if err != nil {
				return err
			}
			steps, err := api.ParseSteps(data)
			if err != nil {
				return err
			}

			var input variables.OrderedTree
			if inputFile != "" {
				raw, err := readInput(cmd, inputFile)
				if err != nil {
					return err
				}
				if input, err = variables.ParseTree(raw); err != nil {
					return err
				}
			}

			client, apiKey, err := root.client(cmd)
			if err != nil {
				return err
			}
			pipeline, err := api.NewPipeline(client, steps)
			if err != nil {
				return err
			}
			results, err := pipeline.Execute(cmd.Context(), apiKey, input)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), results)
		},
	}
	run.Flags().StringVarP(&file, "file", "f", "", "arquivo de steps (- para stdin)")
	run.Flags().StringVar(&inputFile, "input", "", "arquivo JSON/YAML com a entrada do pipeline")
	_ = run.MarkFlagRequired("file")

	cmd.AddCommand(run)
	return cmd
}
