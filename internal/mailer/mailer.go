// Package mailer 发送联系表单产生的邮件。
package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wneessen/go-mail"
)

// Message 是一封纯文本邮件
type Message struct {
	From string
	// Sender 非空时作为信封发件人（MAIL FROM），退信投递到该地址
	Sender  string
	To      string
	ReplyTo string
	Subject string
	Body    string
}

// Credentials 用于 SMTP 认证，按资料邮箱分别提供。
type Credentials struct {
	Username string
	Password string
}

// Transport 投递单封邮件
type Transport interface {
	Send(ctx context.Context, creds Credentials, msg Message) error
}

// DefaultTimeout bounds a single SMTP exchange.
const DefaultTimeout = 15 * time.Second

// SMTPTransport 通过 SMTP 服务器投递邮件
type SMTPTransport struct {
	Host    string
	Port    int
	Timeout time.Duration
}

// NewSMTPTransport 构造 SMTPTransport
func NewSMTPTransport(host string, port int) *SMTPTransport {
	return &SMTPTransport{Host: strings.TrimSpace(host), Port: port, Timeout: DefaultTimeout}
}

// Send 以 creds 登录 SMTP 服务器并发送 msg。
func (t *SMTPTransport) Send(ctx context.Context, creds Credentials, msg Message) error {
	if t.Host == "" {
		return errors.New("smtp host is not configured")
	}

	m := mail.NewMsg()
	if err := m.From(msg.From); err != nil {
		return fmt.Errorf("set from: %w", err)
	}
	if strings.TrimSpace(msg.Sender) != "" {
		if err := m.EnvelopeFrom(msg.Sender); err != nil {
			return fmt.Errorf("set envelope from: %w", err)
		}
	}
	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("set to: %w", err)
	}
	if strings.TrimSpace(msg.ReplyTo) != "" {
		if err := m.ReplyTo(msg.ReplyTo); err != nil {
			return fmt.Errorf("set reply-to: %w", err)
		}
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Body)

	timeout := t.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client, err := mail.NewClient(t.Host,
		mail.WithPort(t.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(creds.Username),
		mail.WithPassword(creds.Password),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(timeout),
	)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}

	sendCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.DialAndSendWithContext(sendCtx, m); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}
