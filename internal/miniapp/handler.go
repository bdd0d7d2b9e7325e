package miniapp

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"
)

// SpinStore persists roulette spins; one prize per telegram id, forever.
type SpinStore interface {
	CanSpin(ctx context.Context, telegramID int64) (bool, error)
	SaveSpin(ctx context.Context, telegramID int64, prize int) error
	Prize(ctx context.Context, telegramID int64) (int, error)
}

// Messenger pushes the prize confirmation into the user's chat.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string, markup any) error
}

// prizeAmounts are the wheel sectors, in rubles.
var prizeAmounts = []int{5000, 10000, 15000, 20000, 25000, 30000}

type Handler struct {
	store SpinStore
	bot   Messenger
	log   zerolog.Logger
}

func NewHandler(store SpinStore, bot Messenger, log zerolog.Logger) *Handler {
	return &Handler{store: store, bot: bot, log: log}
}

// HandleCanSpin reports whether the user still has a spin available.
func (h *Handler) HandleCanSpin(w http.ResponseWriter, r *http.Request) {
	telegramID, err := strconv.ParseInt(r.URL.Query().Get("telegram_id"), 10, 64)
	if err != nil || telegramID == 0 {
		writeError(w, http.StatusBadRequest, "invalid telegram_id")
		return
	}

	canSpin, err := h.store.CanSpin(r.Context(), telegramID)
	if err != nil {
		h.log.Error().Err(err).Int64("telegram_id", telegramID).Msg("can-spin check failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := map[string]any{"can_spin": canSpin}
	if !canSpin {
		prize, err := h.store.Prize(r.Context(), telegramID)
		if err == nil {
			resp["prize"] = prize
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleSpin draws a prize, records it and notifies the user in chat. A
// second spin returns the already-won prize with a 400.
func (h *Handler) HandleSpin(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		TelegramID int64 `json:"telegram_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.TelegramID == 0 {
		writeError(w, http.StatusBadRequest, "invalid telegram_id")
		return
	}

	canSpin, err := h.store.CanSpin(r.Context(), payload.TelegramID)
	if err != nil {
		h.log.Error().Err(err).Int64("telegram_id", payload.TelegramID).Msg("can-spin check failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if !canSpin {
		prize, _ := h.store.Prize(r.Context(), payload.TelegramID)
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": "Already spun",
			"prize": prize,
		})
		return
	}

	prize := prizeAmounts[rand.Intn(len(prizeAmounts))]
	if err := h.store.SaveSpin(r.Context(), payload.TelegramID, prize); err != nil {
		h.log.Error().Err(err).Int64("telegram_id", payload.TelegramID).Msg("save spin failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.log.Info().Int64("telegram_id", payload.TelegramID).Int("prize", prize).Msg("roulette spin")
	h.notifyPrize(r.Context(), payload.TelegramID, prize)

	writeJSON(w, http.StatusOK, map[string]any{"prize": prize})
}

func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// notifyPrize is best effort: the spin is already recorded, a failed chat
// message must not fail the request.
func (h *Handler) notifyPrize(ctx context.Context, telegramID int64, prize int) {
	if h.bot == nil {
		return
	}
	text := fmt.Sprintf(`🎉 **Поздравляем!**

Вы выиграли **%d ₽** на услуги нашей компании!

Приз закреплен за вашим аккаунтом. Наш менеджер свяжется с вами, чтобы обсудить, как его использовать.`, prize)
	if err := h.bot.SendMessage(ctx, telegramID, text, nil); err != nil {
		h.log.Warn().Err(err).Int64("telegram_id", telegramID).Msg("prize notification failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
