package webhooks

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
	"gorm.io/gorm"

	"github.com/fl9mdasif/ai-short-vid-generator-and-social-schedule-publisher/models"
)

type Handler struct {
	DB *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{DB: db}
}

// HandleStripeWebhook processes incoming Stripe webhook events that track the
// user's subscription lifecycle. Plan limits read the fields written here.
func (h *Handler) HandleStripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	signatureHeader := c.GetHeader("Stripe-Signature")

	webhookSecret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	event, err := webhook.ConstructEvent(payload, signatureHeader, webhookSecret)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid webhook signature"})
		return
	}

	switch event.Type {
	case "customer.subscription.created", "customer.subscription.updated":
		h.handleSubscriptionChanged(event)
	case "customer.subscription.deleted":
		h.handleSubscriptionDeleted(event)
	default:
		log.Debug().Str("type", string(event.Type)).Msg("unhandled stripe event type")
	}

	// Return 200 OK to acknowledge receipt
	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *Handler) handleSubscriptionChanged(event stripe.Event) {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		log.Error().Err(err).Msg("error parsing subscription event")
		return
	}
	if sub.Customer == nil {
		return
	}

	plan := "basic"
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		if nickname := sub.Items.Data[0].Price.Nickname; nickname != "" {
			plan = nickname
		}
	}

	updates := map[string]interface{}{
		"subscription_plan":    plan,
		"subscription_status":  string(sub.Status),
		"subscription_ends_at": time.Unix(sub.CurrentPeriodEnd, 0),
	}
	err := h.DB.Model(&models.User{}).
		Where("stripe_customer_id = ?", sub.Customer.ID).
		Updates(updates).Error
	if err != nil {
		log.Error().Err(err).Str("customer", sub.Customer.ID).Msg("failed to update subscription")
		return
	}
	log.Info().Str("customer", sub.Customer.ID).Str("plan", plan).Str("status", string(sub.Status)).Msg("subscription updated")
}

func (h *Handler) handleSubscriptionDeleted(event stripe.Event) {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		log.Error().Err(err).Msg("error parsing subscription event")
		return
	}
	if sub.Customer == nil {
		return
	}

	err := h.DB.Model(&models.User{}).
		Where("stripe_customer_id = ?", sub.Customer.ID).
		Updates(map[string]interface{}{
			"subscription_plan":   "free",
			"subscription_status": "canceled",
		}).Error
	if err != nil {
		log.Error().Err(err).Str("customer", sub.Customer.ID).Msg("failed to cancel subscription")
	}
}
