package logger

import (
	"log/slog"

	gethlog "github.com/ethereum/go-ethereum/log"
	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
)

// InstallGlobal routes the standard slog default logger and go-ethereum's
// root logger into z, so library output ends up in the same stream.
func InstallGlobal(z *zap.Logger) {
	handler := zapslog.NewHandler(z.Core())
	slog.SetDefault(slog.New(handler))
	gethlog.SetDefault(gethlog.NewLogger(zapslog.NewHandler(z.Core(), zapslog.WithName("geth"))))
}
