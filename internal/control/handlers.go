package control

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/cehokocof/telebio/internal/domain/provider"
	"github.com/cehokocof/telebio/internal/ports"
)

// timeLayout matches the timestamp format of the original status card.
const timeLayout = "2006-01-02 15:04:05"

func (r *Router) handleStatus() Reply {
	st := r.up.Status()

	mode := st.Mode.String()
	if mode == "" {
		mode = "unknown"
	}

	pausedLabel := "▶️ активно"
	if st.Paused {
		pausedLabel = "⏸ приостановлено"
	}

	currentBio := "(none)"
	if st.LastBio != "" {
		currentBio = html.EscapeString(st.LastBio)
	}

	lines := []string{
		"🤖 <b>TeleBio Status</b>",
		"",
		fmt.Sprintf("📊 <b>Mode:</b> <code>%s</code>", mode),
		fmt.Sprintf("⏯ <b>State:</b> %s", pausedLabel),
		fmt.Sprintf("📝 <b>Current bio:</b> %s", currentBio),
	}

	if !st.LastUpdateAt.IsZero() {
		lines = append(lines, fmt.Sprintf("🕐 <b>Last update:</b> %s", st.LastUpdateAt.Format(timeLayout)))
	}

	return Reply{Text: strings.Join(lines, "\n"), HTML: true}
}

func (r *Router) handleHistory() Reply {
	entries := r.up.History()
	if len(entries) == 0 {
		return Reply{Text: "📜 No history available yet."}
	}

	lines := []string{"📜 <b>Recent Bio Updates:</b>", ""}
	// Entries arrive oldest first; the card shows newest first.
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		lines = append(lines, fmt.Sprintf("%d. [%s] <code>%s</code>\n   %s",
			len(entries)-i,
			e.Timestamp.Format(timeLayout),
			e.Mode,
			html.EscapeString(e.Bio)))
	}

	return Reply{Text: strings.Join(lines, "\n\n"), HTML: true}
}

func (r *Router) handleSetMode(ctx context.Context, args string) Reply {
	mode, err := provider.ParseMode(args)
	if err != nil {
		return Reply{
			Text: "❌ Invalid mode. Use <code>list</code> or <code>llm</code>.",
			HTML: true,
		}
	}

	if !r.up.SetMode(mode) {
		return Reply{
			Text: fmt.Sprintf("ℹ️ Already in <code>%s</code> mode.", mode),
			HTML: true,
		}
	}

	r.logger.Info(ctx, "mode switched via bot command", ports.F("mode", mode.String()))
	return Reply{
		Text: fmt.Sprintf("✅ Mode switched to <code>%s</code>\nNext bio update will use the new provider.", mode),
		HTML: true,
	}
}

func (r *Router) handleNew(ctx context.Context) Reply {
	if r.up == nil {
		return Reply{Text: "❌ Bot не настроен для обновления био."}
	}

	text, err := r.up.UpdateNow(ctx)
	if err != nil {
		r.logger.Error(ctx, "error during /new command", ports.F("error", err.Error()))
		return Reply{Text: "❌ Ошибка при обновлении био. Проверьте логи."}
	}

	r.logger.Info(ctx, "bio updated via /new command", ports.F("bio", text))
	return Reply{
		Text: fmt.Sprintf("✅ Био обновлено:\n<code>%s</code>", html.EscapeString(text)),
		HTML: true,
	}
}

func (r *Router) handlePause(ctx context.Context) Reply {
	if r.up.TogglePause() {
		r.logger.Info(ctx, "auto-update paused via /pause command")
		return Reply{Text: "⏸ Автообновление приостановлено.\nТекущее био сохранено. Отправьте /pause снова, чтобы возобновить."}
	}

	r.logger.Info(ctx, "auto-update resumed via /pause command")
	return Reply{Text: "▶️ Автообновление возобновлено."}
}
