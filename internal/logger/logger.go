// Package logger 提供全局 logrus 日志实例和统一的单行格式。
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log 全局日志实例，InitLogger 之前默认输出到 stderr
var Log = logrus.New()

const timeLayout = "2006-01-02 15:04:05"

// CustomFormatter 输出 [时间] [级别] [文件:行号] 消息 k=v
type CustomFormatter struct{}

// Format 实现 logrus.Formatter 接口
func (f *CustomFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var caller string
	if entry.HasCaller() {
		caller = fmt.Sprintf("%s:%d", filepath.Base(entry.Caller.File), entry.Caller.Line)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] [%s] [%s] %s", entry.Time.Format(timeLayout), shortLevel(entry.Level), caller, entry.Message)
	for _, k := range sortedKeys(entry.Data) {
		fmt.Fprintf(&sb, " %s=%v", k, entry.Data[k])
	}
	sb.WriteByte('\n')
	return []byte(sb.String()), nil
}

// shortLevel 级别统一为四个字符：INFO WARN ERRO DEBU
func shortLevel(l logrus.Level) string {
	s := strings.ToUpper(l.String())
	if len(s) > 4 {
		return s[:4]
	}
	return s
}

// InitLogger 重建全局日志。日志写 stderr，stdout 留给命令输出；
// filePath 非空时同时追加到文件。无法识别的级别按 info 处理。
func InitLogger(levelStr string, filePath string) error {
	l := logrus.New()
	l.SetReportCaller(true)
	l.SetFormatter(&CustomFormatter{})

	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	out, err := openOutput(filePath)
	if err != nil {
		return err
	}
	l.SetOutput(out)

	Log = l
	return nil
}

func openOutput(filePath string) (io.Writer, error) {
	if filePath == "" {
		return os.Stderr, nil
	}
	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return io.MultiWriter(os.Stderr, file), nil
}
