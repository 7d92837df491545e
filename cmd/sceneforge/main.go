// Command sceneforge is the headless batch editor: it opens (or creates) a
// scene document, runs macro scripts against it through the undo stack, and
// writes the result back if anything changed.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/quasilyte/gdata/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sceneforge/sceneforge/internal/config"
	"github.com/sceneforge/sceneforge/internal/document"
	"github.com/sceneforge/sceneforge/internal/editor"
	"github.com/sceneforge/sceneforge/internal/scripting"
	"github.com/sceneforge/sceneforge/internal/session"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// stringList lets -macro repeat.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

func run() error {
	var (
		cfgPath   string
		scenePath string
		outPath   string
		macros    stringList
	)
	flag.StringVar(&cfgPath, "config", "", "config file (default config/sceneforge.toml)")
	flag.StringVar(&scenePath, "scene", "", "scene document to open, created if missing")
	flag.StringVar(&outPath, "out", "", "write result here instead of overwriting the scene")
	flag.Var(&macros, "macro", "macro file or directory to run, repeatable")
	flag.Parse()

	// 1. Load config
	if cfgPath == "" {
		cfgPath = "config/sceneforge.toml"
		if p := os.Getenv("SCENEFORGE_CONFIG"); p != "" {
			cfgPath = p
		}
	}
	cfg, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	if scenePath == "" {
		return fmt.Errorf("no scene given, use -scene")
	}

	// 3. Open or create the document
	ctx := editor.NewEditContext(log)
	doc, err := document.Load(scenePath)
	switch {
	case err == nil:
		g, player, rerr := doc.Restore()
		if rerr != nil {
			return fmt.Errorf("restore %s: %w", scenePath, rerr)
		}
		ctx.Graph = g
		ctx.Player = player
		log.Info("scene opened",
			zap.String("path", scenePath),
			zap.String("id", doc.ID),
			zap.Int("nodes", g.NodeCount()))
	case errors.Is(err, os.ErrNotExist):
		doc = document.New(ctx.Graph, ctx.Player)
		log.Info("scene created", zap.String("path", scenePath), zap.String("id", doc.ID))
	default:
		return fmt.Errorf("open %s: %w", scenePath, err)
	}

	before, err := doc.Encode()
	if err != nil {
		return fmt.Errorf("encode %s: %w", scenePath, err)
	}
	openDigest := document.Digest(before)

	// 4. Session state (best effort; editing works without it)
	storage, err := gdata.Open(gdata.Config{AppName: "sceneforge"})
	if err != nil {
		log.Warn("session storage unavailable", zap.Error(err))
		storage = nil
	}
	sess := session.NewManager(storage, log)
	sess.TouchDocument(scenePath)

	// 5. Run macros through the undo stack
	stackLog := zap.NewNop()
	if cfg.Editor.DebugCommands {
		stackLog = log
	}
	stack := editor.NewStack(cfg.Editor.UndoCapacity, stackLog)
	engine := scripting.NewEngine(stack, ctx, log)
	defer engine.Close()

	if len(macros) == 0 && cfg.Scripting.MacroDir != "" {
		if err := engine.RunDir(cfg.Scripting.MacroDir); err != nil {
			return err
		}
		sess.SetMacroDir(cfg.Scripting.MacroDir)
	}
	for _, m := range macros {
		info, err := os.Stat(m)
		if err != nil {
			return fmt.Errorf("macro %s: %w", m, err)
		}
		if info.IsDir() {
			err = engine.RunDir(m)
			sess.SetMacroDir(m)
		} else {
			err = engine.RunFile(m)
		}
		if err != nil {
			return err
		}
	}

	for _, name := range stack.CommandNames(ctx) {
		log.Info("applied", zap.String("command", name))
	}

	// 6. Save if anything changed
	doc.Capture(ctx.Graph, ctx.Player)
	after, err := doc.Encode()
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	target := outPath
	if target == "" {
		target = scenePath
	}
	if document.Digest(after) == openDigest && target == scenePath {
		log.Info("no changes, nothing to write")
	} else {
		if cfg.Autosave.Enabled && target == scenePath {
			if err := copyFile(scenePath, scenePath+cfg.Autosave.Suffix); err != nil {
				log.Warn("autosave backup failed", zap.Error(err))
			}
		}
		if err := doc.Save(target); err != nil {
			return fmt.Errorf("save %s: %w", target, err)
		}
		log.Info("scene saved",
			zap.String("path", target),
			zap.Int("commands", stack.Len()))
	}

	if err := sess.Save(); err != nil {
		log.Warn("failed to save session state", zap.Error(err))
	}
	return nil
}

// copyFile backs up src to dst. A missing src (fresh scene) is fine.
func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
