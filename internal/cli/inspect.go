package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	configadapter "github.com/sufield/certauth/internal/adapters/secondary/config"
	"github.com/sufield/certauth/internal/core/domain"
	"github.com/sufield/certauth/internal/core/services"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <token|@file>",
	Short: "Decode a token's certificate chain and report its trust verdict",
	Long: `Decode a token's certificate chain and report its trust verdict.

The token's header is parsed, each x5c entry is decoded, and the chain is
validated against the configured trust anchors. No account store is
consulted: this is an offline diagnostic.

Examples:
  certauth inspect eyJhbGciOi...
  certauth inspect @token.txt --config certauth.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().String("format", "text", "Output format: text or json")
}

// chainEntryReport describes one chain certificate for output.
type chainEntryReport struct {
	Position  int       `json:"position"`
	Subject   string    `json:"subject"`
	Issuer    string    `json:"issuer"`
	NotBefore time.Time `json:"not_before"`
	NotAfter  time.Time `json:"not_after"`
	IsCA      bool      `json:"is_ca"`
}

// inspectReport is the full diagnostic output.
type inspectReport struct {
	Chain      []chainEntryReport `json:"chain"`
	Thumbprint string             `json:"thumbprint"`
	Trusted    bool               `json:"trusted"`
	TrustError string             `json:"trust_error,omitempty"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	token, err := readTokenArg(args[0])
	if err != nil {
		return err
	}

	chain, err := domain.ExtractChain(token)
	if err != nil {
		return fmt.Errorf("failed to extract certificate chain: %w", err)
	}

	report := &inspectReport{
		Thumbprint: domain.Thumbprint(chain.Leaf()).String(),
	}
	for i, cert := range chain.Certificates() {
		report.Chain = append(report.Chain, chainEntryReport{
			Position:  i,
			Subject:   cert.Subject.String(),
			Issuer:    cert.Issuer.String(),
			NotBefore: cert.NotBefore,
			NotAfter:  cert.NotAfter,
			IsCA:      cert.IsCA,
		})
	}

	configPath, _ := cmd.Flags().GetString("config")
	if err := evaluateTrust(cmd, configPath, chain, report); err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	if format == "json" {
		return json.NewEncoder(os.Stdout).Encode(report)
	}
	printInspectReport(report)
	return nil
}

// evaluateTrust validates the chain against the configured anchors and
// records the verdict on the report.
func evaluateTrust(cmd *cobra.Command, configPath string, chain *domain.CertificateChain, report *inspectReport) error {
	provider := configadapter.NewProvider()
	cfg, err := provider.LoadConfiguration(cmd.Context(), configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	pool, err := configadapter.BuildAnchorPool(cfg)
	if err != nil {
		return fmt.Errorf("failed to build trust anchor pool: %w", err)
	}

	validator := services.NewTrustValidator(nil)
	if err := validator.ValidatePath(chain, pool); err != nil {
		report.Trusted = false
		report.TrustError = err.Error()
		return nil
	}
	report.Trusted = true
	return nil
}

// readTokenArg returns the token from the argument, reading a file when the
// argument starts with '@'.
func readTokenArg(arg string) (string, error) {
	if !strings.HasPrefix(arg, "@") {
		return arg, nil
	}
	data, err := os.ReadFile(strings.TrimPrefix(arg, "@"))
	if err != nil {
		return "", fmt.Errorf("failed to read token file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func printInspectReport(report *inspectReport) {
	fmt.Println("Certificate chain:")
	for _, entry := range report.Chain {
		role := "leaf"
		if entry.Position > 0 {
			role = "intermediate"
		}
		if entry.IsCA {
			role += " (CA)"
		}
		fmt.Printf("  [%d] %s\n", entry.Position, role)
		fmt.Printf("      Subject:    %s\n", entry.Subject)
		fmt.Printf("      Issuer:     %s\n", entry.Issuer)
		fmt.Printf("      Not Before: %s\n", entry.NotBefore.Format(time.RFC3339))
		fmt.Printf("      Not After:  %s\n", entry.NotAfter.Format(time.RFC3339))
	}

	fmt.Printf("Thumbprint: %s\n", report.Thumbprint)

	if report.Trusted {
		fmt.Println("Trust: PASS")
	} else {
		fmt.Println("Trust: FAIL")
		fmt.Printf("  %s\n", report.TrustError)
	}
}
