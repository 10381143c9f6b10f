package routers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"maitree/config"
	"maitree/database"
	"maitree/models"
	"maitree/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type harness struct {
	t   *testing.T
	app *fiber.App
	db  *gorm.DB
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db, err := database.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/payment-requests/":
			_, _ = w.Write([]byte(`{"success":true,"payment_request":{"id":"PR1","longurl":"https://pay/PR1"}}`))
		case strings.HasPrefix(r.URL.Path, "/payments/GOOD"):
			_, _ = w.Write([]byte(`{"success":true,"payment":{"status":"credited","amount":"999.00"}}`))
		default:
			_, _ = w.Write([]byte(`{"success":true,"payment":{"status":"failed"}}`))
		}
	}))
	t.Cleanup(gateway.Close)

	cfg := &config.Config{
		AppEnv:                "test",
		JWTKey:                "test-secret",
		SaltRound:             4,
		InstamojoApiURL:       gateway.URL,
		InstamojoApiKey:       "key",
		InstamojoAuthToken:    "token",
		PaymentSettledStatus:  "credited",
		PaymentVerifyTimeout:  time.Second,
		MonthlyPrice:          199,
		LifetimePrice:         999,
		MonthlyReferralBonus:  51,
		LifetimeReferralBonus: 101,
		MinRedemptionAmount:   100,
	}
	config.AppConfig = cfg

	app := fiber.New()
	SetupRoutes(app, services.New(db, cfg, nil))
	return &harness{t: t, app: app, db: db}
}

func (h *harness) do(method, path, token string, body interface{}) (int, envelope) {
	h.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(h.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := h.app.Test(req, -1)
	require.NoError(h.t, err)
	defer resp.Body.Close()

	var out envelope
	require.NoError(h.t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func (h *harness) registerAndLogin(name, phone, referralCode string) (string, string) {
	h.t.Helper()
	status, res := h.do("POST", "/auth/register", "", fiber.Map{
		"name": name, "phone": phone, "password": "secret123", "referralCode": referralCode,
	})
	require.Equal(h.t, fiber.StatusCreated, status, res.Message)
	var reg struct {
		User struct {
			ReferralCode string `json:"referralCode"`
		} `json:"user"`
	}
	require.NoError(h.t, json.Unmarshal(res.Data, &reg))

	status, res = h.do("POST", "/auth/login", "", fiber.Map{"identifier": phone, "password": "secret123"})
	require.Equal(h.t, fiber.StatusOK, status, res.Message)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(h.t, json.Unmarshal(res.Data, &login))
	return login.Token, reg.User.ReferralCode
}

func TestHealth(t *testing.T) {
	h := newHarness(t)
	resp, err := h.app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAuthRoutes(t *testing.T) {
	h := newHarness(t)

	status, res := h.do("POST", "/auth/register", "", fiber.Map{"name": "A", "password": "x"})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, "Validation failed!", res.Message)

	token, _ := h.registerAndLogin("Asha", "9876543210", "")

	status, _ = h.do("POST", "/auth/validate-session", token, nil)
	assert.Equal(t, fiber.StatusOK, status)

	// A second login ends the first session
	h.do("POST", "/auth/login", "", fiber.Map{"identifier": "9876543210", "password": "secret123"})
	status, res = h.do("POST", "/auth/validate-session", token, nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "Session expired. Please login again.", res.Message)

	status, _ = h.do("POST", "/auth/login", "", fiber.Map{"identifier": "9876543210", "password": "wrong-pass"})
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = h.do("POST", "/auth/register", "", fiber.Map{"name": "Bo", "phone": "9999999999", "password": "secret123", "referralCode": "MMNOPE0000"})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
}

func TestLearnerFlow(t *testing.T) {
	h := newHarness(t)
	token, _ := h.registerAndLogin("Asha", "9876543210", "")

	var lessonIDs []uint
	for n := 1; n <= 2; n++ {
		lesson := models.Lesson{Level: models.LevelBeginner, LessonNumber: n, Title: fmt.Sprintf("Lesson %d", n), Content: "..."}
		require.NoError(t, h.db.Create(&lesson).Error)
		lessonIDs = append(lessonIDs, lesson.ID)
	}
	require.NoError(t, h.db.Create(&models.Quiz{Level: models.LevelBeginner, QuizNumber: 1, AfterLesson: 1,
		Questions: datatypes.NewJSONSlice([]models.QuizQuestion{{Question: "1?", Options: []string{"ek", "don"}, CorrectAnswer: "ek"}}),
	}).Error)

	status, res := h.do("GET", "/learner/lessons/beginner", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	var listing struct {
		Lessons []struct {
			ID           uint `json:"ID"`
			IsUnlocked   bool `json:"isUnlocked"`
			RequiresQuiz bool `json:"requiresQuiz"`
			QuizNumber   *int `json:"quizNumber"`
		} `json:"lessons"`
	}
	require.NoError(t, json.Unmarshal(res.Data, &listing))
	require.Len(t, listing.Lessons, 2)
	assert.True(t, listing.Lessons[0].IsUnlocked)
	assert.True(t, listing.Lessons[1].RequiresQuiz)

	status, res = h.do("GET", "/learner/quiz/beginner/1", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.NotContains(t, string(res.Data), "correctAnswer")

	status, _ = h.do("POST", fmt.Sprintf("/learner/lessons/%d/complete", lessonIDs[0]), token, nil)
	require.Equal(t, fiber.StatusOK, status)
	status, res = h.do("POST", fmt.Sprintf("/learner/lessons/%d/complete", lessonIDs[0]), token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Lesson already completed", res.Message)

	status, res = h.do("POST", "/learner/quiz/beginner/1/submit", token, fiber.Map{"answers": []string{"ek"}})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Quiz passed!", res.Message)

	status, _ = h.do("POST", fmt.Sprintf("/learner/lessons/%d/complete", lessonIDs[1]), token, nil)
	require.Equal(t, fiber.StatusOK, status)

	status, res = h.do("GET", "/learner/level-status", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(res.Data), `"medium":{"unlocked":true`)

	status, _ = h.do("GET", "/learner/lessons/advanced", token, nil)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	status, _ = h.do("POST", "/learner/lessons/999/complete", token, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	status, _ = h.do("GET", "/learner/progress", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestSubscriptionAndReferralFlow(t *testing.T) {
	h := newHarness(t)
	referrerToken, code := h.registerAndLogin("Asha", "9876543210", "")
	token, _ := h.registerAndLogin("Ravi", "9123456780", code)

	status, res := h.do("POST", "/subscription/payment-request", token, fiber.Map{"subscriptionType": "monthly"})
	require.Equal(t, fiber.StatusOK, status, res.Message)
	assert.Contains(t, string(res.Data), "https://pay/PR1")

	status, _ = h.do("POST", "/subscription/activate", token, fiber.Map{"subscriptionType": "monthly", "paymentId": "BAD1"})
	assert.Equal(t, fiber.StatusPaymentRequired, status)

	status, res = h.do("POST", "/subscription/activate", token, fiber.Map{"subscriptionType": "monthly", "paymentId": "GOOD1"})
	require.Equal(t, fiber.StatusOK, status, res.Message)

	status, res = h.do("POST", "/subscription/activate", token, fiber.Map{"subscriptionType": "monthly", "paymentId": "GOOD1"})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "Payment already processed", res.Message)

	status, _ = h.do("POST", "/subscription/activate", token, fiber.Map{"subscriptionType": "monthly", "paymentId": " GOOD1 "})
	assert.Equal(t, fiber.StatusConflict, status)
	status, _ = h.do("POST", "/subscription/activate", token, fiber.Map{"subscriptionType": "monthly", "paymentId": "GOOD 1"})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	status, res = h.do("POST", "/subscription/activate", token, fiber.Map{"subscriptionType": "lifetime", "paymentId": "GOOD2"})
	require.Equal(t, fiber.StatusOK, status, res.Message)

	status, res = h.do("GET", "/subscription/status", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(res.Data), `"type":"lifetime"`)

	status, res = h.do("POST", "/subscription/check-access", token, fiber.Map{"level": "expert", "lessonNumber": 4})
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(res.Data), `"hasAccess":true`)

	status, res = h.do("GET", "/learner/wallet", referrerToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	var wallet struct {
		Balance       int64 `json:"balance"`
		ReferralCount int   `json:"referralCount"`
	}
	require.NoError(t, json.Unmarshal(res.Data, &wallet))
	assert.Equal(t, int64(51), wallet.Balance, "bonus paid once for the first purchase only")
	assert.Equal(t, 1, wallet.ReferralCount)

	status, res = h.do("POST", "/learner/redemptions", referrerToken, fiber.Map{"amount": 100})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "Insufficient wallet balance", res.Message)
}

func TestAdminRedemptionRoutes(t *testing.T) {
	h := newHarness(t)
	token, _ := h.registerAndLogin("Asha", "9876543210", "")
	require.NoError(t, h.db.Model(&models.Learner{}).Where("phone = ?", "9876543210").Update("wallet", 150).Error)

	status, res := h.do("POST", "/learner/redemptions", token, fiber.Map{"amount": 120})
	require.Equal(t, fiber.StatusCreated, status, res.Message)
	var created struct {
		Redemption models.Redemption `json:"redemption"`
	}
	require.NoError(t, json.Unmarshal(res.Data, &created))

	status, _ = h.do("GET", "/admin/redemptions", token, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	h.registerAndLogin("Admin", "9000000000", "")
	require.NoError(t, h.db.Model(&models.Learner{}).Where("phone = ?", "9000000000").Update("role", models.RoleAdmin).Error)
	status, res = h.do("POST", "/auth/login", "", fiber.Map{"identifier": "9000000000", "password": "secret123"})
	require.Equal(t, fiber.StatusOK, status)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(res.Data, &login))
	adminToken := login.Token

	status, res = h.do("GET", "/admin/redemptions?status=pending", adminToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(res.Data), `"amount":120`)

	path := fmt.Sprintf("/admin/redemptions/%d/status", created.Redemption.ID)
	status, res = h.do("PUT", path, adminToken, fiber.Map{"status": "processed"})
	require.Equal(t, fiber.StatusOK, status, res.Message)

	status, _ = h.do("PUT", path, adminToken, fiber.Map{"status": "pending"})
	assert.Equal(t, fiber.StatusConflict, status)
	status, _ = h.do("PUT", path, adminToken, fiber.Map{"status": "paid"})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	var learner models.Learner
	require.NoError(t, h.db.Where("phone = ?", "9876543210").First(&learner).Error)
	assert.Equal(t, int64(30), learner.Wallet)
}
