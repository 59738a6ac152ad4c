package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/ChatRelay/backend/internal/bridge"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/content"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/host"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/page"
	"github.com/GriffinCanCode/ChatRelay/backend/internal/runtime"
)

var extractOpts struct {
	pageScript  string
	live        bool
	contactName string
	userName    string
	timeout     time.Duration
	saveTo      int64
}

func init() {
	f := extractCmd.Flags()
	f.StringVar(&extractOpts.pageScript, "page-script", "", "JS file that installs the page state to read")
	f.BoolVar(&extractOpts.live, "live", false, "read the chat tab of the configured browser")
	f.StringVar(&extractOpts.contactName, "contact", "", "fallback sender name for incoming messages")
	f.StringVar(&extractOpts.userName, "user", "", "sender name for outgoing messages")
	f.DurationVar(&extractOpts.timeout, "timeout", 0, "extraction timeout (default from config)")
	f.Int64Var(&extractOpts.saveTo, "save-to", 0, "save the conversation as a note on this person id")
	rootCmd.AddCommand(extractCmd)
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract the active conversation",
	Args:  cobra.NoArgs,
	RunE:  runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	if (extractOpts.pageScript == "") == !extractOpts.live {
		return fmt.Errorf("exactly one of --page-script or --live is required")
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	defer logger.Sync()
	ctx := cmd.Context()

	var eval page.Evaluator
	if extractOpts.pageScript != "" {
		script, err := os.ReadFile(extractOpts.pageScript)
		if err != nil {
			return fmt.Errorf("read page script: %w", err)
		}
		rt, err := page.NewRuntime(page.DefaultConfig(), logger.For(logging.ContextPage))
		if err != nil {
			return err
		}
		defer rt.Close()
		if err := rt.Load(string(script)); err != nil {
			return err
		}
		eval = rt
	} else {
		b, err := host.Connect(ctx, host.Config{ControlURL: cfg.Browser.ControlURL, Headless: cfg.Browser.Headless}, logger.For("host"))
		if err != nil {
			return err
		}
		defer b.Close()
		tab, err := b.FindPage(ctx, cfg.Browser.ChatURL)
		if err != nil {
			return err
		}
		eval = page.NewLive(tab)
	}

	bus := bridge.New(cfg.Extraction.Namespace, logger.For("bridge"))
	observer := page.NewObserver(bus, eval, logger.For(logging.ContextPage))
	observer.Attach()
	defer observer.Detach()

	timeout := cfg.Extraction.Timeout
	if extractOpts.timeout > 0 {
		timeout = extractOpts.timeout
	}
	extractor := content.NewExtractor(bus, timeout, logger.For(logging.ContextContent), nil)

	res, err := extractor.Snapshot(ctx, content.Params{
		ContactName: extractOpts.contactName,
		UserName:    extractOpts.userName,
	})
	if err != nil {
		return err
	}

	out, err := sonic.ConfigStd.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))

	if extractOpts.saveTo <= 0 {
		return nil
	}
	return saveConversation(ctx, cmd.OutOrStdout(), cfg.Addr(), extractOpts.saveTo, extractOpts.contactName, res, logger)
}

func saveConversation(ctx context.Context, w io.Writer, addr string, personID int64, contactName string, res *content.Result, logger *logging.Logger) error {
	client, err := runtime.Dial(ctx, agentURL(addr), nil, logger.For("runtime"))
	if err != nil {
		return err
	}
	defer client.Close()

	if contactName == "" && res.Chat != nil {
		contactName = res.Chat.Title
	}
	note, err := content.NewRelay(client, logger.For(logging.ContextContent)).SaveConversation(ctx, personID, contactName, res.Messages)
	if err != nil {
		return fmt.Errorf("save conversation: %w", err)
	}
	fmt.Fprintf(w, "saved note %d on person %d\n", note.ID, personID)
	return nil
}
