package push

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/assitosante/notification-agent/internal/entity"

	"github.com/sirupsen/logrus"
)

// Permission mirrors the browser notification permission enum.
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

const sendTimeout = 10 * time.Second

// Options for a single notification. Zero values fall back to the gateway
// defaults before the senders see them.
type Options struct {
	Body               string                   `json:"body"`
	Icon               string                   `json:"icon"`
	Badge              string                   `json:"badge"`
	Lang               string                   `json:"lang"`
	Tag                string                   `json:"tag"`
	Renotify           bool                     `json:"renotify"`
	RequireInteraction bool                     `json:"require_interaction"`
	Data               *entity.NotificationData `json:"data,omitempty"`
}

// Sender delivers a rendered notification over one outbound channel.
type Sender interface {
	Send(ctx context.Context, title string, opts Options) error
}

// Defaults are the gateway-level option fallbacks.
type Defaults struct {
	Icon  string
	Badge string
	Lang  string
	Tag   string
	Chime bool
}

// Gateway fans a notification out to the configured senders. Without a
// granted permission every ShowNotification call degrades to a logged no-op.
// Notifications sharing a tag coalesce: an exact repeat replaces the
// previous one instead of stacking, so it is not re-sent.
type Gateway struct {
	defaults Defaults
	senders  []Sender

	mu         sync.Mutex
	permission Permission
	lastByTag  map[string]string
}

func NewGateway(defaults Defaults, senders ...Sender) *Gateway {
	if defaults.Lang == "" {
		defaults.Lang = "fr-FR"
	}
	if defaults.Tag == "" {
		defaults.Tag = "assitosante-notification"
	}

	return &Gateway{
		defaults:   defaults,
		senders:    senders,
		permission: PermissionDefault,
		lastByTag:  make(map[string]string),
	}
}

// RequestPermission resolves the permission state once: granted when at
// least one sender is configured, denied otherwise. Reports whether
// notifications are now enabled.
func (g *Gateway) RequestPermission() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.permission == PermissionDefault {
		if len(g.senders) > 0 {
			g.permission = PermissionGranted
		} else {
			logrus.Warn("Push notifications are not supported: no senders configured")
			g.permission = PermissionDenied
		}
	}

	return g.permission == PermissionGranted
}

func (g *Gateway) Permission() Permission {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.permission
}

// ShowNotification merges the options over the defaults and hands the result
// to every sender. Sender failures are logged, never propagated.
func (g *Gateway) ShowNotification(title string, opts Options) {
	g.mu.Lock()
	if g.permission != PermissionGranted {
		g.mu.Unlock()
		logrus.Warn("Push notifications are not enabled")
		return
	}

	opts = g.applyDefaults(opts)

	rendered := fmt.Sprintf("%s|%s", title, opts.Body)
	if g.lastByTag[opts.Tag] == rendered {
		g.mu.Unlock()
		logrus.Debugf("Notification with tag %q coalesced", opts.Tag)
		return
	}
	g.lastByTag[opts.Tag] = rendered
	senders := g.senders
	g.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	for _, sender := range senders {
		if err := sender.Send(ctx, title, opts); err != nil {
			logrus.Errorf("Failed to send push notification: %v", err)
		}
	}
}

// Chime emits a short audible cue. Best effort: failures are ignored, the
// way browser autoplay restrictions are.
func (g *Gateway) Chime() {
	if !g.defaults.Chime {
		return
	}
	if _, err := os.Stdout.WriteString("\a"); err != nil {
		logrus.Debugf("Audio play failed: %v", err)
	}
}

func (g *Gateway) applyDefaults(opts Options) Options {
	if opts.Icon == "" {
		opts.Icon = g.defaults.Icon
	}
	if opts.Badge == "" {
		opts.Badge = g.defaults.Badge
	}
	if opts.Lang == "" {
		opts.Lang = g.defaults.Lang
	}
	if opts.Tag == "" {
		opts.Tag = g.defaults.Tag
	}
	return opts
}
