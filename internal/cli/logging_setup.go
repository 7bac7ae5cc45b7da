package cli

import (
	"github.com/spf13/cobra"

	"github.com/rshade/recordview/internal/config"
	"github.com/rshade/recordview/internal/logging"
)

// setupLogging configures logging based on config file, environment, and CLI flags.
func setupLogging(cmd *cobra.Command) logging.LogPathResult {
	loggingCfg := config.GetLoggingConfig()
	interactive := cmd.Annotations[annotationInteractive] != ""

	debug, _ := cmd.Flags().GetBool("debug")
	if debug {
		loggingCfg.Level = "debug"
		loggingCfg.Format = logging.FormatConsole
		if !interactive {
			loggingCfg.File = ""
		}
	}

	logCfg := loggingCfg.ToLoggingConfig()
	if interactive && logCfg.Output != logging.OutputFile {
		logCfg.Output = logging.OutputDiscard
	}

	result := logging.NewLoggerWithPath(logCfg)
	logger = logging.ComponentLogger(result.Logger, "cli")

	if result.UsingFile && !interactive {
		logging.PrintLogPathMessage(cmd.ErrOrStderr(), result.FilePath)
	} else if result.FallbackUsed {
		logging.PrintFallbackWarning(cmd.ErrOrStderr(), result.FallbackReason)
	}

	ctx := cmd.Context()
	traceID := logging.GetOrGenerateTraceID(ctx)
	ctx = logging.ContextWithTraceID(ctx, traceID)
	ctx = logger.WithContext(ctx)
	cmd.SetContext(ctx)

	logger.Info().Ctx(ctx).Str("command", cmd.Name()).Msg("command started")

	return result
}

// cleanupLogging closes the log file handle.
func cleanupLogging(logResult *logging.LogPathResult) error {
	if logResult != nil {
		return logResult.Close()
	}
	return nil
}
