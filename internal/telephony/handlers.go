package telephony

import (
	"context"
	"errors"
	"net/http"

	"voicereach/internal/campaigns"
	"voicereach/internal/conversation"
	"voicereach/internal/leads"
	"voicereach/pkg/logger"

	"github.com/gin-gonic/gin"
)

// PlacementResolver maps a provider call id back to the lead and campaign the
// dialer placed the call for. The conversation state is only created once the
// call actually connects and this pairing is confirmed.
type PlacementResolver interface {
	Resolve(providerCallID string) (leads.Lead, campaigns.Campaign, bool)
	// Discard forgets a finished placement, reporting whether this caller
	// removed it.
	Discard(providerCallID string) bool
}

// WebhookHandler converts Twilio voice webhooks into orchestrator calls and
// orchestrator replies into TwiML. No business logic here.
type WebhookHandler struct {
	Orchestrator *conversation.Orchestrator
	Placements   PlacementResolver

	// SpeechActionURL is where Gather posts the customer's next utterance.
	SpeechActionURL string
	// GatherTimeoutSec bounds the wait for customer speech.
	GatherTimeoutSec int

	// ReleaseSlot, if set, frees the dial concurrency slot when a call
	// reaches a terminal status.
	ReleaseSlot func(ctx context.Context, workspaceID string)
}

const repromptLine = "Sorry, I didn't catch that. Could you say it again?"

// HandleAnswer serves the initial voice webhook when the callee picks up.
func (h *WebhookHandler) HandleAnswer(c *gin.Context) {
	log := logger.FromGin(c)

	form, err := ParseAnswerForm(c.Request)
	if err != nil || form.CallSid == "" {
		log.Warn("answer webhook parse failed", "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid form"})
		return
	}

	lead, camp, ok := h.Placements.Resolve(form.CallSid)
	if !ok {
		log.Warn("answer webhook for unplaced call", "call_id", form.CallSid)
		h.writeTwiML(c, func() (string, error) { return Hangup() })
		return
	}

	opening, err := h.Orchestrator.Initialize(c.Request.Context(), form.CallSid, lead, camp)
	if err != nil {
		if errors.Is(err, conversation.ErrDuplicateCall) {
			// Twilio retried the webhook; keep the existing call going.
			h.writeTwiML(c, func() (string, error) {
				return GatherSpeech("", h.SpeechActionURL, h.GatherTimeoutSec)
			})
			return
		}
		log.Error("call initialization failed", "call_id", form.CallSid, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "initialization failed"})
		return
	}

	if MachineAnswered(form.AnsweredBy) {
		// Answering machine: end immediately, the status callback drives
		// finalization with a voicemail outcome.
		_ = h.Orchestrator.OnProviderSignal(c.Request.Context(), form.CallSid, conversation.SignalMachineAnswered)
		h.writeTwiML(c, func() (string, error) { return Hangup() })
		return
	}

	h.writeTwiML(c, func() (string, error) {
		return GatherSpeech(opening, h.SpeechActionURL, h.GatherTimeoutSec)
	})
}

// HandleSpeech serves Gather results: one customer utterance in, one agent
// utterance out.
func (h *WebhookHandler) HandleSpeech(c *gin.Context) {
	log := logger.FromGin(c)

	form, err := ParseSpeechForm(c.Request)
	if err != nil || form.CallSid == "" {
		log.Warn("speech webhook parse failed", "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid form"})
		return
	}

	if form.SpeechResult == "" {
		// Gather timed out without speech; re-prompt without recording a turn.
		h.writeTwiML(c, func() (string, error) {
			return GatherSpeech(repromptLine, h.SpeechActionURL, h.GatherTimeoutSec)
		})
		return
	}

	reply, err := h.Orchestrator.OnCustomerTurn(c.Request.Context(), form.CallSid, form.SpeechResult)
	switch {
	case errors.Is(err, conversation.ErrUnknownCall):
		log.Warn("speech for unknown call", "call_id", form.CallSid)
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "unknown call"})
		return
	case errors.Is(err, conversation.ErrCallEnded):
		h.writeTwiML(c, func() (string, error) { return Hangup() })
		return
	case err != nil:
		log.Error("customer turn failed", "call_id", form.CallSid, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "turn failed"})
		return
	}

	if reply.EndOfCall {
		h.writeTwiML(c, func() (string, error) { return SayAndHangup(reply.Text) })
		return
	}
	h.writeTwiML(c, func() (string, error) {
		return GatherSpeech(reply.Text, h.SpeechActionURL, h.GatherTimeoutSec)
	})
}

// HandleStatus serves lifecycle status callbacks and drives finalization.
func (h *WebhookHandler) HandleStatus(c *gin.Context) {
	log := logger.FromGin(c)

	form, err := ParseStatusForm(c.Request)
	if err != nil || form.CallSid == "" {
		log.Warn("status webhook parse failed", "err", err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid form"})
		return
	}

	if !TerminalStatus(form.CallStatus) {
		c.Status(http.StatusNoContent)
		return
	}

	ctx := c.Request.Context()

	// The placement entry doubles as the slot owner record. It is only
	// discarded once the call needs no further callbacks, and Discard
	// reports the winner so a retried callback cannot release twice.
	lead, _, _ := h.Placements.Resolve(form.CallSid)

	sig := statusSignal(form)
	if err := h.Orchestrator.OnProviderSignal(ctx, form.CallSid, sig); err != nil {
		if errors.Is(err, conversation.ErrUnknownCall) {
			// The call never connected (busy, no-answer before the answer
			// webhook) or was already finalized.
			log.Info("status for call without state", "call_id", form.CallSid, "status", form.CallStatus)
			h.settleSlot(ctx, form.CallSid, lead.WorkspaceID)
			c.Status(http.StatusNoContent)
			return
		}
		log.Error("status signal failed", "call_id", form.CallSid, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "signal failed"})
		return
	}

	if _, err := h.Orchestrator.Finalize(ctx, form.CallSid); err != nil {
		// Keep the placement: the retried callback still needs it to
		// release the slot once finalize goes through.
		log.Error("finalize failed", "call_id", form.CallSid, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "finalize failed"})
		return
	}
	h.settleSlot(ctx, form.CallSid, lead.WorkspaceID)
	c.Status(http.StatusNoContent)
}

// settleSlot retires the placement and frees its live-call slot. Discard
// returning false means another callback already settled this call.
func (h *WebhookHandler) settleSlot(ctx context.Context, providerCallID, workspaceID string) {
	if !h.Placements.Discard(providerCallID) {
		return
	}
	if h.ReleaseSlot != nil && workspaceID != "" {
		h.ReleaseSlot(ctx, workspaceID)
	}
}

func statusSignal(form StatusForm) conversation.ProviderSignal {
	if MachineAnswered(form.AnsweredBy) {
		return conversation.SignalMachineAnswered
	}
	switch form.CallStatus {
	case "busy":
		return conversation.SignalBusy
	case "failed", "canceled":
		return conversation.SignalFailed
	case "no-answer":
		return conversation.SignalNoAnswer
	default:
		return conversation.SignalCompleted
	}
}

func (h *WebhookHandler) writeTwiML(c *gin.Context, build func() (string, error)) {
	twiml, err := build()
	if err != nil {
		logger.FromGin(c).Error("twiml render failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "twiml failed"})
		return
	}
	c.Header("Content-Type", "application/xml")
	c.String(http.StatusOK, twiml)
}

// CallControlHandler serves operator-initiated call control.
type CallControlHandler struct {
	Provider     Provider
	Orchestrator *conversation.Orchestrator
}

// HandleHangup ends a live call on operator request. The provider-side
// hangup triggers the status callback, which finalizes as usual; the signal
// is applied here first so the end reason is manual-operator-action.
func (h *CallControlHandler) HandleHangup(c *gin.Context) {
	log := logger.FromGin(c)
	callID := c.Param("call_id")

	err := h.Orchestrator.OnProviderSignal(c.Request.Context(), callID, conversation.SignalOperatorHangup)
	if errors.Is(err, conversation.ErrUnknownCall) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "unknown call"})
		return
	}
	if err != nil {
		log.Error("operator hangup signal failed", "call_id", callID, "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "hangup failed"})
		return
	}

	if err := h.Provider.Hangup(c.Request.Context(), callID); err != nil {
		// State is already ended; the provider call will be reaped by its
		// own timeout if this request was lost.
		log.Warn("provider hangup failed", "call_id", callID, "err", err)
	}
	c.JSON(http.StatusOK, gin.H{"status": "ending"})
}
