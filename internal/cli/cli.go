// Package cli wires configuration, logging and the analysis pipeline into
// the sunspots command line.
package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"solarspots/internal/apperr"
	"solarspots/internal/logger"
	"solarspots/pkg/analysis"
	"solarspots/pkg/config"
	"solarspots/pkg/loader"
	"solarspots/pkg/visualization"
)

// app carries the state shared by the commands of one invocation
type app struct {
	out    io.Writer
	errOut io.Writer
	log    *logrus.Logger

	configPath string
	envFiles   []string
}

// Execute runs the command line with args and returns the process exit
// code. The report goes to out, logs go to errOut.
func Execute(args []string, out, errOut io.Writer) int {
	a := &app{out: out, errOut: errOut}
	cmd := a.rootCmd()
	cmd.SetArgs(args)

	if err := cmd.Execute(); err != nil {
		logger.WithError(a.logger(), err).Error("sunspots failed")
		return 1
	}
	return 0
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "sunspots",
		Short: "Locate the solar limb and detect sunspots in a full-disk image",
		Long: `sunspots fits a circle to the solar limb of a full-disk image (FITS,
PNG, JPEG, TIFF, ...) and reports the disk center, its radius and the
sunspots found as dark residuals against a median background.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML configuration file")
	root.PersistentFlags().StringSliceVar(&a.envFiles, "env-file", []string{".env"}, "dotenv files with SUNSPOTS_* overrides")

	root.AddCommand(a.newAnalyzeCmd())
	root.AddCommand(a.newConfigCmd())
	return root
}

// logger returns the configured logger, or a plain text one when the
// failure happened before configuration was loaded
func (a *app) logger() *logrus.Logger {
	if a.log != nil {
		return a.log
	}
	l, _ := logger.New("info", logger.FormatText, a.errOut)
	return l
}

// loadConfig layers defaults, the YAML file and the environment
func (a *app) loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(a.envFiles...); err != nil {
		return nil, apperr.New(apperr.KindConfig, "failed to load env files", err)
	}
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (a *app) newAnalyzeCmd() *cobra.Command {
	var (
		renderPath       string
		saveIntermediary bool
		intermediaryDir  string
		blurSigma        float64
		backgroundWindow int
		shrink           float64
		sigma            float64
		logLevel         string
		logFormat        string
	)

	cmd := &cobra.Command{
		Use:   "analyze <image>",
		Short: "Fit the solar disk and detect sunspots",
		Long: `Load a full-disk image, fit the limb circle and detect sunspots inside
the shrunken disk. Flags override the configuration file, which overrides
the built-in defaults; SUNSPOTS_* environment variables sit in between.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("render") {
				cfg.Output.RenderPath = renderPath
			}
			if flags.Changed("save-intermediary") {
				cfg.Output.SaveIntermediaryResults = saveIntermediary
			}
			if flags.Changed("intermediary-dir") {
				cfg.Output.IntermediaryDir = intermediaryDir
			}
			if flags.Changed("blur-sigma") {
				cfg.Limb.BlurSigma = blurSigma
			}
			if flags.Changed("background-window") {
				cfg.Spots.BackgroundWindow = backgroundWindow
			}
			if flags.Changed("shrink") {
				cfg.Disk.ShrinkFactor = shrink
			}
			if flags.Changed("sigma") {
				cfg.Spots.SigmaMultiplier = sigma
			}
			if flags.Changed("log-level") {
				cfg.Logging.Level = logLevel
			}
			if flags.Changed("log-format") {
				cfg.Logging.Format = logFormat
			}

			a.log, err = logger.New(cfg.Logging.Level, cfg.Logging.Format, a.errOut)
			if err != nil {
				return err
			}
			return a.analyze(args[0], cfg)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&renderPath, "render", "r", "", "write the three panel figure to this path")
	f.BoolVar(&saveIntermediary, "save-intermediary", false, "save every pipeline stage as PNG")
	f.StringVar(&intermediaryDir, "intermediary-dir", "intermediary_results", "directory for intermediary results")
	f.Float64Var(&blurSigma, "blur-sigma", 5, "Gaussian sigma applied before the limb threshold")
	f.IntVar(&backgroundWindow, "background-window", 25, "median window size for the spot background")
	f.Float64Var(&shrink, "shrink", 0.95, "fraction of the fitted radius searched for spots")
	f.Float64Var(&sigma, "sigma", 2, "spot threshold in residual standard deviations")
	f.StringVar(&logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	f.StringVar(&logFormat, "log-format", logger.FormatText, "log format (text, json)")
	return cmd
}

// analyze runs the pipeline on the image at path and prints the report
func (a *app) analyze(path string, cfg *config.Config) error {
	params, err := analysis.ParamsFromConfig(cfg)
	if err != nil {
		return err
	}

	start := time.Now()
	frame, err := loader.Load(path)
	if err != nil {
		return err
	}
	rows, cols := frame.Dims()
	a.log.WithFields(logrus.Fields{
		"path":   path,
		"format": frame.Meta.Format,
		"rows":   rows,
		"cols":   cols,
	}).Info("image loaded")

	result, err := analysis.NewAnalyzer(params, a.log).Analyze(frame.Data)
	if err != nil {
		return withPath(err, path)
	}

	if err := visualization.Report(a.out, result); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if cfg.Output.RenderPath != "" {
		norm, err := analysis.Normalize(frame.Data)
		if err != nil {
			return withPath(err, path)
		}
		fig, err := visualization.Render(norm, result)
		if err != nil {
			return err
		}
		if err := visualization.Save(cfg.Output.RenderPath, fig); err != nil {
			return err
		}
		a.log.WithField("path", cfg.Output.RenderPath).Info("figure saved")
	}

	if cfg.Output.SaveIntermediaryResults {
		a.log.WithField("dir", cfg.Output.IntermediaryDir).Info("intermediary results saved")
	}
	a.log.WithField("elapsed", time.Since(start).String()).Debug("done")
	return nil
}

// withPath records the analyzed image on pipeline errors
func withPath(err error, path string) error {
	kind := apperr.KindOf(err)
	if kind == "" || apperr.PathOf(err) != "" {
		return err
	}
	return &apperr.Error{Kind: kind, Message: "analysis failed", Path: path, Cause: err}
}

func (a *app) newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration files",
	}

	initCmd := &cobra.Command{
		Use:   "init <path>",
		Short: "Write the default configuration to a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.CreateDefaultConfigFile(args[0]); err != nil {
				return apperr.New(apperr.KindConfig, "failed to write "+args[0], err)
			}
			fmt.Fprintf(a.out, "Default configuration written to %s\n", args[0])
			return nil
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			_, err = a.out.Write(data)
			return err
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}
