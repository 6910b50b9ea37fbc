package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log 全局日志实例
var Log *zap.Logger

// Init 初始化 zap 日志
// debug 模式输出彩色 console 格式，生产环境输出 JSON
func Init(debug bool) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	level := zapcore.InfoLevel
	if debug {
		encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
		level = zapcore.DebugLevel
	} else {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level)
	Log = zap.New(core, zap.AddCaller())
}

// Sync 刷新缓冲日志，进程退出前调用
func Sync() {
	if Log != nil {
		_ = Log.Sync()
	}
}
