package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/mystore/product-catalog/internal/core/events"
)

func TestMailer(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Mailer Suite")
}

type fakeSender struct {
	sent []sentMail
	fail bool
}

type sentMail struct {
	to      string
	subject string
	body    string
}

func (f *fakeSender) Send(_ context.Context, to, subject, body string) error {
	if f.fail {
		return errors.New("smtp down")
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ = ginkgo.Describe("API client", func() {
	ginkgo.It("posts the message with the bearer key", func() {
		var got sendRequest
		var auth string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth = r.Header.Get("Authorization")
			gomega.Expect(json.NewDecoder(r.Body).Decode(&got)).To(gomega.Succeed())
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := NewAPIClient(APIClientConfig{
			APIURL:    server.URL,
			APIKey:    "test-key",
			FromEmail: "noreply@example.com",
			FromName:  "MyStore",
		}, discardLogger())

		err := client.Send(context.Background(), "ada@example.com", "Hello", "<p>Hi</p>")
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(auth).To(gomega.Equal("Bearer test-key"))
		gomega.Expect(got.From.Email).To(gomega.Equal("noreply@example.com"))
		gomega.Expect(got.To).To(gomega.HaveLen(1))
		gomega.Expect(got.To[0].Email).To(gomega.Equal("ada@example.com"))
		gomega.Expect(got.Subject).To(gomega.Equal("Hello"))
	})

	ginkgo.It("treats non-2xx responses as failures", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		client := NewAPIClient(APIClientConfig{APIURL: server.URL}, discardLogger())
		err := client.Send(context.Background(), "ada@example.com", "Hello", "<p>Hi</p>")
		gomega.Expect(err).To(gomega.HaveOccurred())
	})
})

var _ = ginkgo.Describe("Event subscriber", func() {
	var sender *fakeSender
	var sub *Subscriber

	ginkgo.BeforeEach(func() {
		sender = &fakeSender{}
		sub = NewSubscriber(sender, discardLogger())
	})

	ginkgo.It("mails the verification code on registration", func() {
		event := events.NewAccountRegisteredEvent("ada@example.com", "Ada", "123456")
		gomega.Expect(sub.handleVerification(context.Background(), event)).To(gomega.Succeed())

		gomega.Expect(sender.sent).To(gomega.HaveLen(1))
		gomega.Expect(sender.sent[0].to).To(gomega.Equal("ada@example.com"))
		gomega.Expect(sender.sent[0].body).To(gomega.ContainSubstring("123456"))
	})

	ginkgo.It("mails the reset link", func() {
		event := events.NewPasswordResetRequestedEvent("ada@example.com", "Ada", "https://shop.example.com/resetpassword/tok")
		gomega.Expect(sub.handlePasswordReset(context.Background(), event)).To(gomega.Succeed())

		gomega.Expect(sender.sent[0].body).To(gomega.ContainSubstring("https://shop.example.com/resetpassword/tok"))
	})

	ginkgo.It("mails initial credentials to new staff", func() {
		event := events.NewEmployeeCreatedEvent("bob@example.com", "Bob", "EMP007", "temp-pass-123")
		gomega.Expect(sub.handleEmployeeCreated(context.Background(), event)).To(gomega.Succeed())

		gomega.Expect(sender.sent[0].body).To(gomega.ContainSubstring("EMP007"))
		gomega.Expect(sender.sent[0].body).To(gomega.ContainSubstring("temp-pass-123"))
	})

	ginkgo.It("surfaces delivery failures to the bus", func() {
		sender.fail = true
		event := events.NewOTPResentEvent("ada@example.com", "Ada", "654321")
		gomega.Expect(sub.handleVerification(context.Background(), event)).ToNot(gomega.Succeed())
	})
})
