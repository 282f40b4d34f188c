package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type client struct {
	BaseURL   string
	OutFormat string // "json" | "text"
	HTTP      *http.Client
}

func (c *client) postForm(path string, form url.Values, clientID, clientSecret string) (int, []byte, error) {
	endpoint := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequest(http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if clientSecret != "" {
		req.SetBasicAuth(clientID, clientSecret)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b, nil
}

func (c *client) print(status int, body []byte) {
	if c.OutFormat == "json" {
		var v any
		if json.Unmarshal(body, &v) == nil {
			p, _ := json.MarshalIndent(v, "", "  ")
			fmt.Println(string(p))
			return
		}
	}
	if len(body) > 0 {
		fmt.Println(string(body))
	} else {
		fmt.Printf("status=%d\n", status)
	}
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func main() {
	var (
		baseURL      = envOr("AUTHCORE_URL", "http://localhost:8080")
		out          = envOr("AUTHCORE_OUT", "text")
		clientID     = envOr("AUTHCORE_CLIENT_ID", "")
		clientSecret = envOr("AUTHCORE_CLIENT_SECRET", "")
	)

	root := &cobra.Command{
		Use:   "authcorectl",
		Short: "CLI cliente para los endpoints OAuth2 de authcore",
	}
	root.PersistentFlags().StringVar(&baseURL, "url", baseURL, "URL base del servidor (env AUTHCORE_URL)")
	root.PersistentFlags().StringVar(&out, "out", out, "Formato de salida: json|text")
	root.PersistentFlags().StringVar(&clientID, "client-id", clientID, "client_id (env AUTHCORE_CLIENT_ID)")
	root.PersistentFlags().StringVar(&clientSecret, "client-secret", clientSecret, "client_secret (env AUTHCORE_CLIENT_SECRET)")

	cl := &client{HTTP: &http.Client{Timeout: 30 * time.Second}}
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		cl.BaseURL = baseURL
		cl.OutFormat = out
	}

	// token: intercambio directo contra /oauth2/token
	var (
		tokGrant    string
		tokCode     string
		tokRedirect string
		tokVerifier string
		tokRefresh  string
		tokScope    string
	)
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Pedir tokens (authorization_code|refresh_token|client_credentials)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if clientID == "" {
				return fmt.Errorf("--client-id es requerido")
			}
			form := url.Values{}
			form.Set("grant_type", tokGrant)
			form.Set("client_id", clientID)
			switch tokGrant {
			case "authorization_code":
				form.Set("code", tokCode)
				form.Set("redirect_uri", tokRedirect)
				if tokVerifier != "" {
					form.Set("code_verifier", tokVerifier)
				}
			case "refresh_token":
				form.Set("refresh_token", tokRefresh)
			}
			if tokScope != "" {
				form.Set("scope", tokScope)
			}
			status, body, err := cl.postForm("/oauth2/token", form, clientID, clientSecret)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("token fallo: status=%d body=%s", status, string(body))
			}
			cl.print(status, body)
			return nil
		},
	}
	tokenCmd.Flags().StringVar(&tokGrant, "grant-type", "client_credentials", "grant_type")
	tokenCmd.Flags().StringVar(&tokCode, "code", "", "authorization code")
	tokenCmd.Flags().StringVar(&tokRedirect, "redirect-uri", "", "redirect_uri usado en /authorize")
	tokenCmd.Flags().StringVar(&tokVerifier, "code-verifier", "", "PKCE code_verifier")
	tokenCmd.Flags().StringVar(&tokRefresh, "refresh-token", "", "refresh token a rotar")
	tokenCmd.Flags().StringVar(&tokScope, "scope", "", "scopes pedidos (space-separated)")

	// introspect
	var intToken string
	introspectCmd := &cobra.Command{
		Use:   "introspect",
		Short: "Introspección de un access token (RFC 7662)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if intToken == "" {
				return fmt.Errorf("--token es requerido")
			}
			form := url.Values{}
			form.Set("token", intToken)
			if clientID != "" {
				form.Set("client_id", clientID)
			}
			status, body, err := cl.postForm("/oauth2/introspect", form, clientID, clientSecret)
			if err != nil {
				return err
			}
			cl.print(status, body)
			return nil
		},
	}
	introspectCmd.Flags().StringVar(&intToken, "token", "", "token a introspectar")

	// revoke
	var revToken, revHint string
	revokeCmd := &cobra.Command{
		Use:   "revoke",
		Short: "Revocar un token (RFC 7009)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if revToken == "" {
				return fmt.Errorf("--token es requerido")
			}
			form := url.Values{}
			form.Set("token", revToken)
			if revHint != "" {
				form.Set("token_type_hint", revHint)
			}
			if clientID != "" {
				form.Set("client_id", clientID)
			}
			status, body, err := cl.postForm("/oauth2/revoke", form, clientID, clientSecret)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("revoke fallo: status=%d body=%s", status, string(body))
			}
			if cl.OutFormat == "text" {
				fmt.Println("ok")
				return nil
			}
			cl.print(status, body)
			return nil
		},
	}
	revokeCmd.Flags().StringVar(&revToken, "token", "", "token a revocar")
	revokeCmd.Flags().StringVar(&revHint, "token-type-hint", "", "access_token|refresh_token")

	// ping: health check
	pingCmd := &cobra.Command{
		Use:   "ping",
		Short: "Ping al servidor (/healthz)",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := cl.HTTP.Get(strings.TrimRight(cl.BaseURL, "/") + "/healthz")
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			b, _ := io.ReadAll(resp.Body)
			if resp.StatusCode/100 != 2 {
				return fmt.Errorf("ping fallo: status=%d body=%s", resp.StatusCode, string(b))
			}
			if cl.OutFormat == "text" {
				fmt.Println("ok")
				return nil
			}
			cl.print(resp.StatusCode, b)
			return nil
		},
	}

	root.AddCommand(tokenCmd, introspectCmd, revokeCmd, pingCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
