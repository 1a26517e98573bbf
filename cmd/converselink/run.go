package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/room4-2/converselink/agents"
	"github.com/room4-2/converselink/capture"
	"github.com/room4-2/converselink/config"
	"github.com/room4-2/converselink/messages"
	"github.com/room4-2/converselink/pcm"
	"github.com/room4-2/converselink/playback"
	"github.com/room4-2/converselink/session"
	"github.com/room4-2/converselink/transport"
	"github.com/room4-2/converselink/vad"
	"github.com/room4-2/converselink/widgets"
)

func newRunCmd() *cobra.Command {
	var agentName string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Connect to the orchestrator and start a conversation",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if agentName != "" {
				cfg.Agent = agentName
			}
			return runClient(cfg)
		},
	}
	cmd.Flags().StringVar(&agentName, "agent", "", "agent preset (overrides AGENT)")
	return cmd
}

func newAgentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "agents",
		Short: "List available agent presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range agents.Names() {
				preset, _ := agents.Lookup(name)
				fmt.Printf("%-22s %s\n", name, preset.Title)
			}
		},
	}
}

func runClient(cfg *config.Config) error {
	preset, ok := agents.Lookup(cfg.Agent)
	if !ok {
		return fmt.Errorf("unknown agent %q, available: %s",
			cfg.Agent, strings.Join(agents.Names(), ", "))
	}

	speaker, err := playback.NewSpeaker(cfg.VoiceSampleRate)
	if err != nil {
		return fmt.Errorf("failed to open speaker: %w", err)
	}
	defer speaker.Close()
	player := playback.NewPlayer(pcm.Format{SampleRate: cfg.VoiceSampleRate}, speaker)

	mic := capture.NewPipeline(&capture.Device{},
		cfg.DeviceSampleRate, cfg.CaptureSampleRate, cfg.FrameSize)
	defer mic.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn, err := transport.Dial(ctx, cfg.OrchestratorURL())
	if err != nil {
		return fmt.Errorf("failed to connect to orchestrator: %w", err)
	}
	defer conn.Close()

	sess := session.New(conn, mic, player, cfg.ThinkingDebounce)
	sess.OnMessage = func(msg session.Message) { printMessage(msg, cfg.UIDebugMode, sess) }
	sess.OnWidget = func(w widgets.Payload) { printWidget(preset, w) }

	monitor := vad.NewMonitor(vad.NewEnergy(), cfg.VADSpeechFrames)
	monitor.OnSpeechStart = func() { sess.Post(session.SpeechStart{}) }
	monitor.OnSpeechEnd = func(captured []int16) {
		sess.Post(session.SpeechEnd{Captured: captured})
	}
	mic.OnFrame = func(frame []int16) {
		monitor.Feed(frame)
		if err := conn.SendAudio(pcm.Bytes(frame)); err != nil && !conn.Closed() {
			log.Printf("⚠️ Failed to send audio frame: %v", err)
		}
	}

	conn.OnEnvelope = func(env *messages.Envelope) {
		sess.Post(session.EnvelopeReceived{Envelope: env})
	}
	conn.OnAudio = func(frame []byte) { sess.Post(session.AudioReceived{Frame: frame}) }
	conn.OnClose = func(err error) {
		if err != nil {
			log.Printf("🔌 Disconnected from orchestrator: %v", err)
		} else {
			log.Println("🔌 Disconnected from orchestrator")
		}
		cancel()
	}
	conn.Start()

	go sess.Run(ctx)

	log.Printf("🚀 Connected to %s as %s (%s)", cfg.OrchestratorURL(), preset.Title, preset.Name)
	sess.StartAgent()
	sess.SendAction("start", map[string]string{
		"agent":             preset.Name,
		"greeting_filename": cfg.GreetingFilename,
	})

	go readCommands(sess, cancel)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sigChan:
		log.Println("🛑 Received shutdown signal...")
	case <-ctx.Done():
	}
	return nil
}

// readCommands drives the session from stdin. Anything that is not a slash
// command is sent as a text message.
func readCommands(sess *session.Session, quit context.CancelFunc) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
		case line == "/quit":
			quit()
			return
		case line == "/mic":
			sess.ToggleMic()
		case line == "/voice":
			sess.ToggleVoiceMode()
		case strings.HasPrefix(line, "/action "):
			sendActionCommand(sess, strings.TrimPrefix(line, "/action "))
		default:
			sess.SendText(line)
		}
	}
}

// sendActionCommand parses "/action <tool> [json params]".
func sendActionCommand(sess *session.Session, rest string) {
	tool, rawParams, _ := strings.Cut(strings.TrimSpace(rest), " ")
	if tool == "" {
		log.Println("⚠️ Usage: /action <tool> [json params]")
		return
	}
	params := map[string]any{}
	if rawParams != "" {
		if err := sonic.UnmarshalString(rawParams, &params); err != nil {
			log.Printf("⚠️ Invalid action params: %v", err)
			return
		}
	}
	sess.SendAction(tool, params)
}

func printMessage(msg session.Message, debug bool, sess *session.Session) {
	switch msg.Kind {
	case session.KindWidget:
		fmt.Printf("[%s] <widget:%s>\n", msg.Sender, msg.Widget.Type)
	default:
		fmt.Printf("[%s] %s\n", msg.Sender, msg.Body)
	}
	if debug {
		log.Printf("📡 flags=%+v queuedWidgets=%d", sess.Flags(), sess.QueuedWidgets())
	}
}

func printWidget(preset agents.Preset, w widgets.Payload) {
	if !preset.Recognizes(w.Type) {
		log.Printf("⚠️ Agent %q received unhandled widget type %q", preset.Name, w.Type)
		return
	}
	fmt.Printf("── %s ──\n%s\n", w.Type, w.Details)
}
