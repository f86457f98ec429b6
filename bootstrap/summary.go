package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kbukum/vimeonet/component"
	"github.com/kbukum/vimeonet/logger"
)

// Summary describes the started app: where it sends requests, how it
// authenticates and the live health of its components.
type Summary struct {
	serviceName     string
	startupDuration time.Duration
	out             io.Writer
}

// NewSummary creates a summary printed to stdout.
func NewSummary(serviceName string) *Summary {
	return &Summary{serviceName: serviceName, out: os.Stdout}
}

// SetOutput redirects the printed summary. A nil writer disables printing.
func (s *Summary) SetOutput(w io.Writer) { s.out = w }

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// Log writes the summary to the logger and, when an output is set, prints it.
func (s *Summary) Log(ctx context.Context, app *App) {
	health := app.Components.HealthAll(ctx)
	app.Logger.Info("Application started", logger.Fields(
		"api", app.Client.Config().BaseURL,
		"transport", app.Cfg.Transport.Kind,
		"auth", app.Auth.Mode().String(),
		"cache", app.Cache != nil,
		"components", len(health),
		logger.FieldDuration, s.startupDuration.Milliseconds(),
	))
	if s.out != nil {
		s.Print(s.out, app, health)
	}
}

// Print renders the summary as a tree.
func (s *Summary) Print(w io.Writer, app *App, health []component.Health) {
	fmt.Fprintf(w, "\n🚀 %s started in %.2fs\n\n", s.serviceName, s.startupDuration.Seconds())

	cfg := app.Client.Config()
	fmt.Fprintf(w, "🌐 API\n")
	fmt.Fprintf(w, "   ├── %s (version %s)\n", cfg.BaseURL, cfg.APIVersion)
	fmt.Fprintf(w, "   ├── transport: %s\n", app.Cfg.Transport.Kind)
	fmt.Fprintf(w, "   └── auth: %s\n", app.Auth.Mode())

	fmt.Fprintf(w, "\n🏥 Health Check\n")
	if len(health) == 0 {
		fmt.Fprintf(w, "   └── No components registered\n")
	}
	healthy := 0
	for i, h := range health {
		prefix := "├──"
		if i == len(health)-1 {
			prefix = "└──"
		}
		msg := ""
		if h.Message != "" {
			msg = " (" + h.Message + ")"
		}
		fmt.Fprintf(w, "   %s %s %s: %s%s\n", prefix, healthStatusIcon(h.Status), h.Name, strings.ToLower(string(h.Status)), msg)
		if h.Status == component.StatusHealthy {
			healthy++
		}
	}
	if len(health) > 0 {
		if healthy == len(health) {
			fmt.Fprintf(w, "\n✅ All components healthy (%d/%d)\n", healthy, len(health))
		} else {
			fmt.Fprintf(w, "\n⚠️  Some components have issues (%d/%d healthy)\n", healthy, len(health))
		}
	}
	fmt.Fprintf(w, "\n")
}

func healthStatusIcon(status component.HealthStatus) string {
	switch status {
	case component.StatusHealthy:
		return "✅"
	case component.StatusDegraded:
		return "⚠️"
	case component.StatusUnhealthy:
		return "❌"
	default:
		return "❓"
	}
}
