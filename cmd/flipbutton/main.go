package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"flipbutton/internal/app"
	"flipbutton/internal/button"
	"flipbutton/internal/config"
	"flipbutton/internal/tui"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// readConfig reads the config file named by the defaults.
func readConfig() (*config.Config, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return cfg, nil
}

// newApp reads the config and creates a FlipApp. The caller must defer app.Close().
func newApp(ctx context.Context, opts app.Options) (*app.FlipApp, error) {
	cfg, err := readConfig()
	if err != nil {
		return nil, err
	}

	opts.Passphrase = promptPassphrase
	a, err := app.NewFlipApp(ctx, cfg, opts)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

// promptPassphrase reads the passphrase from the terminal without echo.
func promptPassphrase() (string, error) {
	return readSecret("Passphrase: ")
}

func readSecret(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("a terminal is required to enter the passphrase")
	}
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

var rootCmd = &cobra.Command{
	Use:   "flipbutton",
	Short: "A button that flips, and shows the images you give it",
	Long: `flipbutton shows a button in the terminal. A click flips it between its
top and bottom faces and cycles through stored images. A shift+click (or 'o')
opens a file picker; the chosen image is shown right away and stored.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return errors.New("flipbutton needs an interactive terminal")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		a, err := newApp(ctx, app.Options{})
		if err != nil {
			return err
		}
		defer a.Close()

		renderer := tui.NewRenderer()
		picker := tui.NewPicker(a.Config().Uploads.StartDir)
		c := a.NewCoordinator(picker, renderer)

		return tui.Run(ctx, c, renderer, picker, a.References(), a.Logger())
	},
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := app.DefaultConfig()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		if err := config.Init(path, cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", path)
		fmt.Printf("Base Dir:  %s\n", cfg.BaseDir)
		fmt.Printf("Start Dir: %s\n", cfg.Uploads.StartDir)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		m := &config.Manager{}
		return m.Write(os.Stdout, cfg)
	},
}

// assets command
var assetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "Manage stored images",
}

var assetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored images",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, app.Options{Console: os.Stderr})
		if err != nil {
			return err
		}
		defer a.Close()

		assets, err := a.ListAssets(ctx)
		if err != nil {
			return err
		}

		if len(assets) == 0 {
			fmt.Println("No images stored.")
			return nil
		}

		for _, asset := range assets {
			encrypted := ""
			if asset.Encrypted {
				encrypted = "  [encrypted]"
			}
			fmt.Printf("#%d  %s  %-10s  %8d  %s  %s%s\n",
				asset.ID,
				asset.ContentID[:12],
				asset.Type,
				asset.Size,
				asset.LastModified.Format("2006-01-02 15:04:05"),
				asset.Name,
				encrypted,
			)
		}
		return nil
	},
}

var assetsAddCmd = &cobra.Command{
	Use:   "add FILE",
	Short: "Store an image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, app.Options{Console: os.Stderr})
		if err != nil {
			return err
		}
		defer a.Close()

		stored, err := a.AddImage(ctx, args[0])
		if errors.Is(err, button.ErrDuplicate) {
			fmt.Printf("Already stored: %s\n", args[0])
			return nil
		}
		if err != nil {
			return fmt.Errorf("adding image: %w", err)
		}

		fmt.Printf("Stored #%d %s (%s, %d bytes)\n", stored.ID, stored.Name, stored.Type, stored.Size)
		return nil
	},
}

// import command
var importCmd = &cobra.Command{
	Use:   "import DIR",
	Short: "Store every image in a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		recursive, _ := cmd.Flags().GetBool("recursive")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		a, err := newApp(ctx, app.Options{Console: os.Stderr})
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.Import(ctx, args[0], recursive)
		fmt.Printf("Stored %d image(s), %d already stored, %d skipped\n", res.Inserted, res.Duplicates, res.Skipped)
		if err != nil {
			return fmt.Errorf("import: %w", err)
		}
		return nil
	},
}

// encryption command
var encryptionCmd = &cobra.Command{
	Use:   "encryption",
	Short: "Manage payload encryption",
}

var encryptionInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate the encryption key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}

		passphrase, err := promptPassphrase()
		if err != nil {
			return err
		}
		confirm, err := readSecret("Confirm passphrase: ")
		if err != nil {
			return err
		}
		if passphrase != confirm {
			return errors.New("passphrases do not match")
		}

		if err := app.InitEncryption(cfg, passphrase); err != nil {
			return err
		}

		fmt.Printf("Public key:  %s\n", cfg.Encryption.PublicKeyPath)
		fmt.Printf("Private key: %s\n", cfg.Encryption.PrivateKeyPath)
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// assets subcommands
	assetsCmd.AddCommand(assetsListCmd)
	assetsCmd.AddCommand(assetsAddCmd)

	// encryption subcommands
	encryptionCmd.AddCommand(encryptionInitCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(assetsCmd)
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().BoolP("recursive", "r", false, "Recurse into subdirectories")
	rootCmd.AddCommand(encryptionCmd)
}
