package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/spacedrop/spacedrop/client"
	"github.com/spacedrop/spacedrop/client/internal/devstate"
)

var gatewayURL string
var deviceID string
var debug bool

func main() {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "spacedrop",
		Short: "Spacedrop CLI for creating spaces and posting to their timelines",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
			log.Logger = log.Output(zerolog.ConsoleWriter{
				Out:        os.Stderr,
				TimeFormat: "2006-01-02 15:04:05",
				NoColor:    true,
			})

			if debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
				_ = os.Setenv("SPACEDROP_DEBUG", "true")
				log.Debug().Msg("debug logging enabled")
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
		},
	}

	defaultURL := getEnv("SPACEDROP_GATEWAY_URL", "http://localhost:8787")
	rootCmd.PersistentFlags().StringVar(&gatewayURL, "gateway-url", defaultURL, "Base URL of the Spacedrop gateway")
	rootCmd.PersistentFlags().StringVar(&deviceID, "device-id", "", "Device ID (defaults to the persisted local identity)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable verbose debug output")

	rootCmd.AddCommand(newCreateSpaceCmd())
	rootCmd.AddCommand(newGetSpaceCmd())
	rootCmd.AddCommand(newValidateCodeCmd())
	rootCmd.AddCommand(newPostTextCmd())
	rootCmd.AddCommand(newPostFileCmd())
	rootCmd.AddCommand(newTailCmd())
	rootCmd.AddCommand(newGetNoteCmd())
	rootCmd.AddCommand(newUpdateNoteCmd())
	rootCmd.AddCommand(newRecentSpacesCmd())
	rootCmd.AddCommand(newForgetSpaceCmd())

	return rootCmd
}

// openState opens the sqlite device state under the user config dir. The CLI
// shares it across invocations so the device identity stays stable.
func openState() (*devstate.Store, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, "spacedrop", "state.db")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return devstate.Open(path)
}

// newClient builds an SDK client, minting a device identity on first use.
func newClient(ctx context.Context) (*client.Client, *devstate.Store, error) {
	st, err := openState()
	if err != nil {
		return nil, nil, fmt.Errorf("open device state: %w", err)
	}
	id := deviceID
	if id == "" {
		id, err = st.DeviceID(ctx)
		if err != nil {
			_ = st.Close()
			return nil, nil, fmt.Errorf("resolve device id: %w", err)
		}
	}
	c, err := client.New(gatewayURL, id)
	if err != nil {
		_ = st.Close()
		return nil, nil, err
	}
	return c, st, nil
}

func newCreateSpaceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create-space",
		Short: "Create a new shared space",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
			defer cancel()

			c, st, err := newClient(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()
			defer func() { _ = c.Close() }()

			start := time.Now()
			sp, err := c.CreateSpace(ctx)
			if err != nil {
				log.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("create space failed")
				return err
			}
			if err := st.RememberSpace(ctx, *sp); err != nil {
				log.Warn().Err(err).Msg("could not persist space locally")
			}

			fmt.Printf("Space created: %s\n", sp.ID)
			fmt.Printf("Room code:     %s\n", sp.Slug)
			fmt.Printf("Expires:       %s\n", sp.ExpiresAt().Format(time.RFC3339))
			return nil
		},
	}
}

func newGetSpaceCmd() *cobra.Command {
	var spaceID string

	cmd := &cobra.Command{
		Use:   "get-space",
		Short: "Fetch a space by ID",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
			defer cancel()

			c, st, err := newClient(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()
			defer func() { _ = c.Close() }()

			sp, err := c.GetSpace(ctx, spaceID)
			if err != nil {
				return err
			}

			fmt.Printf("Space:        %s\n", sp.ID)
			fmt.Printf("Room code:    %s\n", sp.Slug)
			fmt.Printf("Last active:  %s\n", sp.LastActivityAt.Format(time.RFC3339))
			fmt.Printf("Expired:      %v\n", sp.Expired(time.Now()))
			return nil
		},
	}

	cmd.Flags().StringVar(&spaceID, "space-id", "", "Space ID (required)")
	_ = cmd.MarkFlagRequired("space-id")
	return cmd
}

func newValidateCodeCmd() *cobra.Command {
	var code string

	cmd := &cobra.Command{
		Use:   "validate-code",
		Short: "Check whether a room code points at a live space",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
			defer cancel()

			c, st, err := newClient(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()
			defer func() { _ = c.Close() }()

			ok, err := c.ValidateRoomCode(ctx, code)
			if err != nil {
				return err
			}
			if ok {
				fmt.Println("valid")
			} else {
				fmt.Println("invalid")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "Room code (required)")
	_ = cmd.MarkFlagRequired("code")
	return cmd
}

func newPostTextCmd() *cobra.Command {
	var spaceID, text string

	cmd := &cobra.Command{
		Use:   "post-text",
		Short: "Post a text entry to a space",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			c, st, err := newClient(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()
			defer func() { _ = c.Close() }() // drain queues before the context dies

			sess, err := c.OpenSpace(ctx, spaceID)
			if err != nil {
				return err
			}
			defer sess.Close()

			start := time.Now()
			entry, err := sess.PostText(ctx, text)
			if err != nil {
				log.Error().Err(err).Str("space_id", spaceID).Dur("elapsed", time.Since(start)).Msg("post failed")
				return err
			}

			fmt.Printf("Posted: %s\n", entry.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&spaceID, "space-id", "", "Space ID (required)")
	cmd.Flags().StringVar(&text, "text", "", "Entry text (required)")
	_ = cmd.MarkFlagRequired("space-id")
	_ = cmd.MarkFlagRequired("text")
	return cmd
}

func newPostFileCmd() *cobra.Command {
	var spaceID, path string

	cmd := &cobra.Command{
		Use:   "post-file",
		Short: "Upload a local file into a space",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()

			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			c, st, err := newClient(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()
			defer func() { _ = c.Close() }()

			sess, err := c.OpenSpace(ctx, spaceID)
			if err != nil {
				return err
			}
			defer sess.Close()

			placeholderID, err := sess.PostFiles(ctx, []client.File{{
				Name: filepath.Base(path),
				Type: mimeTypeFor(path),
				Data: data,
			}})
			if err != nil {
				return err
			}
			if err := c.AwaitConsistency(ctx, placeholderID); err != nil {
				return err
			}

			for _, up := range sess.PendingUploads() {
				if up.Status == client.UploadError {
					return fmt.Errorf("upload failed: %s", up.Name)
				}
			}
			fmt.Println("Uploaded")
			return nil
		},
	}

	cmd.Flags().StringVar(&spaceID, "space-id", "", "Space ID (required)")
	cmd.Flags().StringVar(&path, "file", "", "Path of the file to upload (required)")
	_ = cmd.MarkFlagRequired("space-id")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newTailCmd() *cobra.Command {
	var spaceID string

	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Stream a space's timeline until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			c, st, err := newClient(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()
			defer func() { _ = c.Close() }()

			sess, err := c.OpenSpace(ctx, spaceID)
			if err != nil {
				return err
			}
			defer sess.Close()

			for _, e := range sess.Entries() {
				printEntry(e)
			}

			events := sess.Events()
			for {
				select {
				case <-ctx.Done():
					return nil
				case ev, ok := <-events:
					if !ok {
						return nil
					}
					switch ev.Type {
					case client.EventAppend, client.EventReplace:
						printEntry(ev.Entry)
					case client.EventPatch:
						fmt.Printf("%s  (edited) %s\n", ev.Entry.CreatedAt.Format("15:04:05"), summarize(ev.Entry))
					case client.EventRemove:
						fmt.Printf("          (removed %s)\n", ev.Entry.ID)
					}
				}
			}
		},
	}

	cmd.Flags().StringVar(&spaceID, "space-id", "", "Space ID (required)")
	_ = cmd.MarkFlagRequired("space-id")
	return cmd
}

func printEntry(e client.Entry) {
	fmt.Printf("%s  %s\n", e.CreatedAt.Format("15:04:05"), summarize(e))
}

// summarize renders an entry one-line for terminal output.
func summarize(e client.Entry) string {
	p := client.DecodePayload(e.Text)
	switch p.Kind {
	case client.PayloadDrawing:
		return "[drawing]"
	case client.PayloadPhoto:
		return "[photo]"
	case client.PayloadPhotoSet:
		return fmt.Sprintf("[%d photos]", len(p.Photos))
	case client.PayloadNoteRef:
		return fmt.Sprintf("[note] %s (%s)", p.Note.Title, p.Note.Slug)
	default:
		if e.Kind == client.KindFile || e.Kind == client.KindPDF {
			return fmt.Sprintf("[file] %s", p.Text)
		}
		return p.Text
	}
}

func mimeTypeFor(path string) string {
	switch filepath.Ext(path) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".pdf":
		return "application/pdf"
	case ".txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
