package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"

	"mavenestudio/models"
	"mavenestudio/services"
	"mavenestudio/services/i18n"
	"mavenestudio/services/leadform"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContactHandler(sub leadform.Submitter) (*ContactHandler, *services.MemoryWizardStore) {
	store := services.NewMemoryWizardStore(time.Minute)
	return &ContactHandler{
		Store:      store,
		Controller: leadform.NewController(i18n.Lookup, sub, nil),
		SessionTTL: time.Minute,
	}, store
}

// seedSession stores a session on the given step with every answer valid
func seedSession(t *testing.T, store services.WizardStore, step int) *leadform.Session {
	t.Helper()
	s := leadform.NewSession("sess-" + t.Name())
	s.Step = step
	s.Answers = leadform.Answers{
		Name:    "Ana Souza",
		Email:   "ana@example.com",
		Phone:   "(11) 91234-5678",
		Service: "Identidade Visual",
		Message: "Preciso de uma marca nova",
	}
	require.NoError(t, store.Save(context.Background(), s))
	return s
}

func TestContactShow(t *testing.T) {
	h, store := newContactHandler(&fakeSubmitter{})
	_, c, rec := setupEcho(http.MethodGet, "/contato?utm=x", nil)
	c.Request().Header.Set("Referer", "https://google.com/")

	require.NoError(t, h.Show(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Vamos tirar sua ideia do papel")
	assert.Contains(t, rec.Body.String(), `lang="pt-BR"`)

	cookie := findCookie(rec, WizardCookieName)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, "/contato", cookie.Path)

	s, err := store.Get(context.Background(), cookie.Value)
	require.NoError(t, err)
	assert.Equal(t, leadform.PhaseIntro, s.Phase())
	assert.Equal(t, testAppURL+"/contato?utm=x", s.PageURL)
	assert.Equal(t, "https://google.com/", s.Referrer)
}

func TestContactShowDiscardsPreviousSession(t *testing.T) {
	h, store := newContactHandler(&fakeSubmitter{})
	old := seedSession(t, store, 4)

	_, c, rec := setupEcho(http.MethodGet, "/contato", nil)
	withWizardCookie(c, old.ID)
	require.NoError(t, h.Show(c))

	_, err := store.Get(context.Background(), old.ID)
	assert.ErrorIs(t, err, services.ErrWizardNotFound)
	assert.NotEqual(t, old.ID, findCookie(rec, WizardCookieName).Value)
}

func TestContactNext(t *testing.T) {
	t.Run("IntroStartsQuestions", func(t *testing.T) {
		h, store := newContactHandler(&fakeSubmitter{})
		s := seedSession(t, store, 0)

		c, rec := formContext("/contato/next", url.Values{})
		require.NoError(t, h.Next(withHTMX(withWizardCookie(c, s.ID))))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Qual é o seu nome?")
		assert.NotContains(t, rec.Body.String(), "<html")
	})

	t.Run("InvalidValueStays", func(t *testing.T) {
		h, store := newContactHandler(&fakeSubmitter{})
		s := seedSession(t, store, 2)

		c, rec := formContext("/contato/next", url.Values{"value": {"not-an-email"}})
		require.NoError(t, h.Next(withHTMX(withWizardCookie(c, s.ID))))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "Digite um e-mail válido")

		got, err := store.Get(context.Background(), s.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.Step)
		assert.Equal(t, "not-an-email", got.Answers.Email)
	})

	t.Run("ValidValueAdvances", func(t *testing.T) {
		h, store := newContactHandler(&fakeSubmitter{})
		s := seedSession(t, store, 3)

		c, rec := formContext("/contato/next", url.Values{"value": {"21987654321"}})
		require.NoError(t, h.Next(withWizardCookie(c, s.ID)))

		// Without htmx the whole page comes back
		assert.Contains(t, rec.Body.String(), "<html")
		assert.Contains(t, rec.Body.String(), "Qual é o nome da sua empresa?")

		got, err := store.Get(context.Background(), s.ID)
		require.NoError(t, err)
		assert.Equal(t, 4, got.Step)
		assert.Equal(t, "(21) 98765-4321", got.Answers.Phone)
	})

	t.Run("LastStepSubmits", func(t *testing.T) {
		sub := &fakeSubmitter{}
		h, store := newContactHandler(sub)
		s := seedSession(t, store, leadform.TotalSteps())
		s.Referrer = "https://instagram.com/"
		require.NoError(t, store.Save(context.Background(), s))

		c, rec := formContext("/contato/next", url.Values{"value": {"Quero um site novo"}})
		c.Request().Header.Set("User-Agent", "test-agent")
		require.NoError(t, h.Next(withHTMX(withWizardCookie(c, s.ID))))

		assert.Contains(t, rec.Body.String(), "Recebemos sua mensagem!")
		assert.Contains(t, rec.Body.String(), "fbq('track','Lead'")

		subs := sub.submissions()
		require.Len(t, subs, 1)
		assert.Equal(t, "Quero um site novo", subs[0].Answers.Message)
		assert.Equal(t, "pt", subs[0].Metadata.Language)
		assert.Equal(t, "https://instagram.com/", subs[0].Metadata.Referrer)
		assert.Equal(t, "test-agent", subs[0].Metadata.UserAgent)
		assert.Equal(t, models.LeadChannelWizard, subs[0].Metadata.Channel)

		got, err := store.Get(context.Background(), s.ID)
		require.NoError(t, err)
		assert.True(t, got.Submitted)
	})

	t.Run("DeliveryFailureShowsDetail", func(t *testing.T) {
		sub := &fakeSubmitter{err: &leadform.DeliveryError{StatusCode: 500, Detail: "boom"}}
		h, store := newContactHandler(sub)
		s := seedSession(t, store, leadform.TotalSteps())

		c, rec := formContext("/contato/next", url.Values{"value": {"Oi"}})
		require.NoError(t, h.Next(withHTMX(withWizardCookie(c, s.ID))))

		assert.Contains(t, rec.Body.String(), "Não foi possível enviar")
		assert.Contains(t, rec.Body.String(), "Webhook error (500): boom")

		got, err := store.Get(context.Background(), s.ID)
		require.NoError(t, err)
		assert.False(t, got.Submitted)
		assert.False(t, got.Submitting)
		assert.Equal(t, leadform.TotalSteps(), got.Step)
	})

	t.Run("CaptchaRejected", func(t *testing.T) {
		sub := &fakeSubmitter{}
		h, store := newContactHandler(sub)
		h.Captcha = func(ctx context.Context, token, ip string) (bool, error) {
			return token == "good", nil
		}
		s := seedSession(t, store, leadform.TotalSteps())

		c, rec := formContext("/contato/next", url.Values{"value": {"Oi"}, "cf-turnstile-response": {"bad"}})
		require.NoError(t, h.Next(withHTMX(withWizardCookie(c, s.ID))))

		assert.Contains(t, rec.Body.String(), "Confirme que você não é um robô")
		assert.Empty(t, sub.submissions())

		c, rec = formContext("/contato/next", url.Values{"value": {"Oi"}, "cf-turnstile-response": {"good"}})
		require.NoError(t, h.Next(withHTMX(withWizardCookie(c, s.ID))))
		assert.Contains(t, rec.Body.String(), "Recebemos sua mensagem!")
		assert.Len(t, sub.submissions(), 1)
	})

	t.Run("ExpiredSessionRestarts", func(t *testing.T) {
		h, _ := newContactHandler(&fakeSubmitter{})

		c, rec := formContext("/contato/next", url.Values{"value": {"Ana"}})
		require.NoError(t, h.Next(withHTMX(withWizardCookie(c, "gone"))))

		assert.Contains(t, rec.Body.String(), "Vamos tirar sua ideia do papel")
		cookie := findCookie(rec, WizardCookieName)
		require.NotNil(t, cookie)
		assert.NotEqual(t, "gone", cookie.Value)
	})

	t.Run("BusySession", func(t *testing.T) {
		h, store := newContactHandler(&fakeSubmitter{})
		s := seedSession(t, store, 1)
		release, err := store.Acquire(context.Background(), s.ID)
		require.NoError(t, err)
		defer release()

		c, _ := formContext("/contato/next", url.Values{"value": {"Ana"}})
		err = h.Next(withHTMX(withWizardCookie(c, s.ID)))

		var he *echo.HTTPError
		require.True(t, errors.As(err, &he))
		assert.Equal(t, http.StatusConflict, he.Code)
	})
}

func TestContactBack(t *testing.T) {
	h, store := newContactHandler(&fakeSubmitter{})
	s := seedSession(t, store, 2)

	c, rec := formContext("/contato/back", url.Values{"value": {"typed@example.com"}})
	require.NoError(t, h.Back(withHTMX(withWizardCookie(c, s.ID))))

	assert.Contains(t, rec.Body.String(), "Qual é o seu nome?")
	got, err := store.Get(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Step)
	assert.Equal(t, "typed@example.com", got.Answers.Email)
}

func TestContactInput(t *testing.T) {
	t.Run("PhoneIsMasked", func(t *testing.T) {
		h, store := newContactHandler(&fakeSubmitter{})
		s := seedSession(t, store, 3)

		c, rec := formContext("/contato/input", url.Values{"value": {"11912345678"}})
		require.NoError(t, h.Input(withHTMX(withWizardCookie(c, s.ID))))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `value="(11) 91234-5678"`)
	})

	t.Run("TextNeedsNoBody", func(t *testing.T) {
		h, store := newContactHandler(&fakeSubmitter{})
		s := seedSession(t, store, 1)

		c, rec := formContext("/contato/input", url.Values{"value": {"Bea"}})
		require.NoError(t, h.Input(withHTMX(withWizardCookie(c, s.ID))))

		assert.Equal(t, http.StatusNoContent, rec.Code)
		got, err := store.Get(context.Background(), s.ID)
		require.NoError(t, err)
		assert.Equal(t, "Bea", got.Answers.Name)
	})
}

func TestContactToggleService(t *testing.T) {
	h, store := newContactHandler(&fakeSubmitter{})
	s := seedSession(t, store, 5)

	c, rec := formContext("/contato/service", url.Values{"service": {"Web Development"}})
	require.NoError(t, h.ToggleService(withHTMX(withWizardCookie(c, s.ID))))
	assert.Equal(t, http.StatusOK, rec.Code)

	got, err := store.Get(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Identidade Visual", "Web Development"}, got.Answers.SelectedServices())

	c, _ = formContext("/contato/service", url.Values{"service": {"Identidade Visual"}})
	require.NoError(t, h.ToggleService(withHTMX(withWizardCookie(c, s.ID))))
	got, err = store.Get(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Web Development"}, got.Answers.SelectedServices())
}
