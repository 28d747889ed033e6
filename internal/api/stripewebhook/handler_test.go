package stripewebhooks

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"auction-house/internal/domain/billing"
	"auction-house/internal/domain/clients"
	"auction-house/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v75/webhook"
)

const secret = "whsec_test"

func newRouter(t *testing.T) (*gin.Engine, *billing.Service, billing.Settlement) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.OpenDB(t, &clients.Client{}, &billing.Settlement{})
	st := billing.Settlement{LotID: 7, HammerPrice: 100, BuyersPremium: 10, TotalBuyerPays: 110, Status: billing.SettlementPending}
	require.NoError(t, db.Create(&st).Error)

	svc := billing.NewService(db, nil, "")
	r := gin.New()
	r.POST("/api/webhooks/stripe", NewHandler(svc, secret).StripeWebhook)
	return r, svc, st
}

func post(r http.Handler, payload []byte, sig string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", bytes.NewReader(payload))
	req.Header.Set("Stripe-Signature", sig)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sign(payload []byte) string {
	now := time.Now()
	mac := webhook.ComputeSignature(now, payload, secret)
	return fmt.Sprintf("t=%d,v1=%s", now.Unix(), hex.EncodeToString(mac))
}

func event(kind, session string) []byte {
	return []byte(fmt.Sprintf(`{"id":"evt_1","object":"event","type":%q,"data":{"object":%s}}`, kind, session))
}

func TestCheckoutCompletedMarksSettlementPaid(t *testing.T) {
	r, svc, st := newRouter(t)
	body := event("checkout.session.completed",
		fmt.Sprintf(`{"id":"cs_1","object":"checkout.session","payment_status":"paid","metadata":{"settlement_id":"%d"}}`, st.ID))

	w := post(r, body, sign(body))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	got, err := svc.Get(t.Context(), st.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.SettlementPaid, got.Status)

	// redelivery is accepted
	w = post(r, body, sign(body))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUnpaidSessionLeavesSettlementPending(t *testing.T) {
	r, svc, st := newRouter(t)
	body := event("checkout.session.completed",
		fmt.Sprintf(`{"id":"cs_2","object":"checkout.session","payment_status":"unpaid","client_reference_id":"%d"}`, st.ID))

	w := post(r, body, sign(body))
	require.Equal(t, http.StatusOK, w.Code)

	got, err := svc.Get(t.Context(), st.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.SettlementPending, got.Status)
}

func TestBadSignatureRejected(t *testing.T) {
	r, _, _ := newRouter(t)
	body := event("checkout.session.completed", `{"id":"cs_3"}`)
	w := post(r, body, "t=1,v1=deadbeef")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUnknownEventsIgnored(t *testing.T) {
	r, _, _ := newRouter(t)
	body := event("invoice.created", `{"id":"in_1"}`)
	w := post(r, body, sign(body))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ignored")
}
