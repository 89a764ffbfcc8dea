package alert

import (
	"context"
	"errors"
	"html/template"
	"io"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/resend/resend-go/v2"

	"github.com/jpalmerr/pulsecheck"
	"github.com/jpalmerr/pulsecheck/config"
)

type fakeSender struct {
	name string
	err  error
	got  []Message
}

func (f *fakeSender) Name() string { return f.name }

func (f *fakeSender) Send(_ context.Context, msg Message) error {
	f.got = append(f.got, msg)
	return f.err
}

type fakeEmails struct {
	req  *resend.SendEmailRequest
	resp *resend.SendEmailResponse
	err  error
}

func (f *fakeEmails) SendWithContext(_ context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	f.req = params
	return f.resp, f.err
}

type fakeBot struct {
	params *bot.SendMessageParams
	err    error
}

func (f *fakeBot) SendMessage(_ context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	f.params = params
	if f.err != nil {
		return nil, f.err
	}
	return &models.Message{ID: 1}, nil
}

func downReport() pulsecheck.Report {
	up := pulsecheck.TargetResult{Name: "A", Address: "https://a.example.com", OK: true, AttemptCount: 1}
	httpDown := pulsecheck.TargetResult{
		Name:         "B",
		Address:      "https://b.example.com",
		Rule:         pulsecheck.DefaultRule(),
		AttemptCount: 3,
		LastAttempt:  pulsecheck.Attempt{StatusCode: 500, StatusText: "Internal Server Error"},
	}
	timedOut := pulsecheck.TargetResult{
		Name:         "C <script>",
		Address:      "https://c.example.com",
		Rule:         pulsecheck.Not(pulsecheck.In(503)),
		AttemptCount: 1,
		LastAttempt:  pulsecheck.Attempt{FailureReason: "timeout"},
	}

	report := pulsecheck.Aggregate([]pulsecheck.TargetResult{up, httpDown, timedOut})
	report.RunID = "run-1"
	return report
}

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

var _ = Describe("Compose", func() {
	It("summarises every down target", func() {
		msg := Compose("[pulsecheck]", downReport())

		Expect(msg.Subject).To(Equal("[pulsecheck] 2 of 3 targets down"))
		Expect(msg.Text).To(ContainSubstring("- B (https://b.example.com): HTTP 500 Internal Server Error, 3 attempts, expect 2xx-3xx"))
		Expect(msg.Text).To(ContainSubstring("timeout, 1 attempt, expect not(in[503])"))
		Expect(msg.Text).To(ContainSubstring("Total down: 2 (run run-1)"))
		Expect(msg.Text).NotTo(ContainSubstring("- A "))
	})

	It("escapes target names in the HTML body", func() {
		msg := Compose("", downReport())

		Expect(msg.HTML).To(ContainSubstring("C &lt;script&gt;"))
		Expect(msg.HTML).NotTo(ContainSubstring("<script>"))
		Expect(msg.Subject).To(Equal("2 of 3 targets down"))
	})

	It("describes a missing response without a reason", func() {
		Expect(describeLast(pulsecheck.Attempt{})).To(Equal("no response"))
		Expect(describeLast(pulsecheck.Attempt{StatusCode: 418})).To(Equal("HTTP 418"))
	})

	It("falls back to escaped text when the HTML template fails", func() {
		broken := template.Must(template.New("broken").Parse(`<p>{{.Missing}}</p>`))

		got := renderHTML(broken, struct{ Heading string }{"x"}, "A <down>\n")

		Expect(got).To(Equal("<pre>A &lt;down&gt;\n</pre>"))
	})

	It("renders the template when it succeeds", func() {
		ok := template.Must(template.New("ok").Parse(`<p>{{.Heading}}</p>`))

		Expect(renderHTML(ok, struct{ Heading string }{"x"}, "plain")).To(Equal("<p>x</p>"))
	})
})

var _ = Describe("Dispatcher", func() {
	var (
		email    *fakeSender
		telegram *fakeSender
	)

	BeforeEach(func() {
		email = &fakeSender{name: "email"}
		telegram = &fakeSender{name: "telegram"}
	})

	Context("when every target is up", func() {
		It("sends nothing", func() {
			d := NewDispatcher("[p]", quiet, email, telegram)
			report := pulsecheck.Aggregate([]pulsecheck.TargetResult{{Name: "A", OK: true}})

			outcome, err := d.Dispatch(context.Background(), report)

			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Attempted).To(BeFalse())
			Expect(outcome.Sent()).To(BeFalse())
			Expect(email.got).To(BeEmpty())
			Expect(telegram.got).To(BeEmpty())
		})
	})

	Context("when targets are down", func() {
		It("notifies every channel", func() {
			d := NewDispatcher("[p]", quiet, email, telegram)

			outcome, err := d.Dispatch(context.Background(), downReport())

			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Attempted).To(BeTrue())
			Expect(outcome.Sent()).To(BeTrue())
			Expect(outcome.Delivered).To(Equal([]string{"email", "telegram"}))
			Expect(email.got).To(HaveLen(1))
			Expect(telegram.got).To(HaveLen(1))
			Expect(email.got[0].Subject).To(HavePrefix("[p] "))
		})

		It("keeps sending after a failure and joins the errors", func() {
			email.err = errors.New("rate limited")
			d := NewDispatcher("[p]", quiet, email, telegram)

			outcome, err := d.Dispatch(context.Background(), downReport())

			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("email: rate limited"))
			Expect(outcome.Sent()).To(BeFalse())
			Expect(outcome.Failed).To(Equal([]string{"email"}))
			Expect(outcome.Delivered).To(Equal([]string{"telegram"}))
			Expect(telegram.got).To(HaveLen(1))
		})

		It("only logs when no channel is configured", func() {
			d := NewDispatcher("[p]", quiet, nil)

			outcome, err := d.Dispatch(context.Background(), downReport())

			Expect(err).NotTo(HaveOccurred())
			Expect(outcome.Attempted).To(BeFalse())
			Expect(d.Channels()).To(BeEmpty())
		})
	})
})

var _ = Describe("EmailSender", func() {
	It("sends subject and both bodies", func() {
		api := &fakeEmails{resp: &resend.SendEmailResponse{Id: "abc"}}
		s := newEmailSender(api, "alerts@example.com", []string{"oncall@example.com"})

		err := s.Send(context.Background(), Message{Subject: "s", Text: "t", HTML: "<p>h</p>"})

		Expect(err).NotTo(HaveOccurred())
		Expect(api.req.From).To(Equal("alerts@example.com"))
		Expect(api.req.To).To(Equal([]string{"oncall@example.com"}))
		Expect(api.req.Subject).To(Equal("s"))
		Expect(api.req.Text).To(Equal("t"))
		Expect(api.req.Html).To(Equal("<p>h</p>"))
		Expect(s.Name()).To(Equal("email"))
	})

	It("wraps API errors", func() {
		s := newEmailSender(&fakeEmails{err: errors.New("unauthorized")}, "a@example.com", []string{"b@example.com"})

		err := s.Send(context.Background(), Message{})

		Expect(err).To(MatchError(ContainSubstring("resend: unauthorized")))
	})

	It("requires credentials", func() {
		_, err := NewEmailSender("", "a@example.com", []string{"b@example.com"})
		Expect(err).To(HaveOccurred())

		_, err = NewEmailSender("key", "", nil)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("TelegramSender", func() {
	It("sends subject and text to the chat", func() {
		fb := &fakeBot{}
		s := &TelegramSender{bot: fb, chatID: 42}

		err := s.Send(context.Background(), Message{Subject: "2 down", Text: "details"})

		Expect(err).NotTo(HaveOccurred())
		Expect(fb.params.ChatID).To(Equal(int64(42)))
		Expect(fb.params.Text).To(Equal("2 down\n\ndetails"))
		Expect(s.Name()).To(Equal("telegram"))
	})

	It("truncates long messages", func() {
		fb := &fakeBot{}
		s := &TelegramSender{bot: fb, chatID: 42}

		err := s.Send(context.Background(), Message{Subject: "s", Text: strings.Repeat("x", 5000)})

		Expect(err).NotTo(HaveOccurred())
		Expect([]rune(fb.params.Text)).To(HaveLen(telegramMaxText))
	})

	It("wraps API errors", func() {
		s := &TelegramSender{bot: &fakeBot{err: errors.New("chat not found")}, chatID: 1}

		Expect(s.Send(context.Background(), Message{})).To(MatchError(ContainSubstring("telegram: chat not found")))
	})

	It("requires a token and chat", func() {
		_, err := NewTelegramSender("", 1)
		Expect(err).To(HaveOccurred())

		_, err = NewTelegramSender("123:abc", 0)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("SendersFromConfig", func() {
	It("builds only enabled channels", func() {
		senders, err := SendersFromConfig(config.AlertConfig{
			Email:    config.EmailConfig{APIKey: "re_x", From: "a@example.com", To: []string{"b@example.com"}},
			Telegram: config.TelegramConfig{Token: "123:abc", ChatID: 7},
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(senders).To(HaveLen(2))
		Expect(senders[0].Name()).To(Equal("email"))
		Expect(senders[1].Name()).To(Equal("telegram"))
	})

	It("returns nothing when no channel is enabled", func() {
		senders, err := SendersFromConfig(config.AlertConfig{})

		Expect(err).NotTo(HaveOccurred())
		Expect(senders).To(BeEmpty())
	})
})
