package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"net"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/wneessen/go-mail"
	"github.com/yuin/goldmark"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
)

var contactEmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ContactMessage 是联系表单提交的内容。
type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// OutgoingMail 是待发送的邮件。
type OutgoingMail struct {
	From     string
	To       string
	ReplyTo  string
	Subject  string
	HTMLBody string
	TextBody string
}

// MailSender 发送邮件。
type MailSender interface {
	Send(ctx context.Context, m OutgoingMail) error
}

// SMTPConfig 是 SMTP 连接参数。
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

// Configured 判断账号与密码是否齐全。
func (c SMTPConfig) Configured() bool {
	return strings.TrimSpace(c.Username) != "" && strings.TrimSpace(c.Password) != ""
}

// SMTPSender 基于 go-mail 发送邮件。
type SMTPSender struct {
	cfg SMTPConfig
}

// NewSMTPSender 构造 SMTPSender
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) client() (*mail.Client, error) {
	port := s.cfg.Port
	if port == 0 {
		port = 587
	}
	return mail.NewClient(s.cfg.Host,
		mail.WithPort(port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.cfg.Username),
		mail.WithPassword(s.cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
}

// Send 实现 MailSender。
func (s *SMTPSender) Send(ctx context.Context, m OutgoingMail) error {
	msg := mail.NewMsg()
	if err := msg.From(m.From); err != nil {
		return fmt.Errorf("set from: %w", err)
	}
	if err := msg.To(m.To); err != nil {
		return fmt.Errorf("set to: %w", err)
	}
	if m.ReplyTo != "" {
		if err := msg.ReplyTo(m.ReplyTo); err != nil {
			return fmt.Errorf("set reply-to: %w", err)
		}
	}
	msg.Subject(m.Subject)
	msg.SetBodyString(mail.TypeTextHTML, m.HTMLBody)
	if m.TextBody != "" {
		msg.AddAlternativeString(mail.TypeTextPlain, m.TextBody)
	}

	client, err := s.client()
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, msg)
}

// Verify 建立一次连接并完成认证，用于启动时检查配置。
func (s *SMTPSender) Verify(ctx context.Context) error {
	client, err := s.client()
	if err != nil {
		return err
	}
	if err := client.DialWithContext(ctx); err != nil {
		return err
	}
	return client.Close()
}

// ContactService 校验联系表单并转发到站长邮箱
type ContactService struct {
	sender    MailSender
	from      string
	recipient string
	enabled   bool
	markdown  goldmark.Markdown
	policy    *bluemonday.Policy
}

// NewContactService 构造 ContactService，recipient 为空时发给发件账号本身。
func NewContactService(sender MailSender, cfg SMTPConfig, recipient string) *ContactService {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		recipient = strings.TrimSpace(cfg.Username)
	}
	return &ContactService{
		sender:    sender,
		from:      strings.TrimSpace(cfg.Username),
		recipient: recipient,
		enabled:   cfg.Configured(),
		markdown:  goldmark.New(goldmark.WithRendererOptions(goldmarkhtml.WithHardWraps())),
		policy:    bluemonday.UGCPolicy(),
	}
}

// Submit 校验并发送联系消息。
func (s *ContactService) Submit(ctx context.Context, in ContactMessage) error {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	message := strings.TrimSpace(in.Message)
	if name == "" || email == "" || message == "" {
		return ErrContactFieldsRequired
	}
	if !contactEmailPattern.MatchString(email) {
		return ErrContactInvalidEmail
	}
	if !s.enabled || s.sender == nil {
		log.Printf("[MAIL] contact form rejected: email credentials not configured")
		return ErrMailNotConfigured
	}

	body, err := s.renderBody(name, email, message)
	if err != nil {
		return fmt.Errorf("render contact body: %w", err)
	}

	log.Printf("[MAIL] sending contact message from %s to %s", email, s.recipient)
	err = s.sender.Send(ctx, OutgoingMail{
		From:     s.from,
		To:       s.recipient,
		ReplyTo:  email,
		Subject:  "Contact Form Submission from " + name,
		HTMLBody: body,
		TextBody: fmt.Sprintf("Name: %s\nEmail: %s\n\n%s", name, email, message),
	})
	if err != nil {
		log.Printf("[MAIL] send failed: %v", err)
		return classifyMailError(err)
	}
	return nil
}

func (s *ContactService) renderBody(name, email, message string) (string, error) {
	var rendered bytes.Buffer
	if err := s.markdown.Convert([]byte(message), &rendered); err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("<h2>New Contact Form Submission</h2>\n")
	fmt.Fprintf(&b, "<p><strong>Name:</strong> %s</p>\n", html.EscapeString(name))
	fmt.Fprintf(&b, "<p><strong>Email:</strong> %s</p>\n", html.EscapeString(email))
	b.WriteString("<p><strong>Message:</strong></p>\n")
	b.WriteString(s.policy.Sanitize(rendered.String()))
	b.WriteString("<hr>\n<p><em>Sent from Decode Puzzle App</em></p>\n")
	return b.String(), nil
}

// classifyMailError 把底层错误归为认证失败、连接失败或一般发送失败。
func classifyMailError(err error) error {
	var netErr net.Error
	var opErr *net.OpError
	switch {
	case errors.As(err, &opErr), errors.As(err, &netErr), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrMailConnection, err)
	case strings.Contains(strings.ToLower(err.Error()), "auth"),
		strings.Contains(err.Error(), "535"):
		return fmt.Errorf("%w: %v", ErrMailAuth, err)
	default:
		return fmt.Errorf("%w: %v", ErrMailSend, err)
	}
}
