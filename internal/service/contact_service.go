package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vitrine/internal/db"
	"github.com/vitrine/internal/mailer"
	"github.com/vitrine/internal/metrics"
)

var (
	// ErrConfigurationIncomplete 在资料缺少邮箱或邮件凭据时返回，此时不会发信
	ErrConfigurationIncomplete = errors.New("contact configuration incomplete")
	// ErrDeliveryFailed 在给资料主人的通知投递失败时返回
	ErrDeliveryFailed = errors.New("contact delivery failed")
	// ErrContactInvalid 在表单缺少邮箱或留言时返回
	ErrContactInvalid = errors.New("invalid contact form")
)

// ContactForm 是访客提交的联系表单
type ContactForm struct {
	Name       string
	Email      string
	Company    string
	Profession string
	Subject    string
	Message    string
}

// ContactResult 描述一次通知的结果。主人通知已送达时才会返回结果。
type ContactResult struct {
	ConfirmationSent bool
}

// ContactSettings 是站点级的邮件设置
type ContactSettings struct {
	// DefaultFrom 非空时用作所有邮件的信封发件人
	DefaultFrom string
	// SiteURL 用于在确认邮件里附上资料主页的绝对链接
	SiteURL string
}

// ContactService 将联系表单转发到资料邮箱，并按需给访客发送确认邮件。
type ContactService struct {
	transport mailer.Transport
	settings  ContactSettings
	logger    *slog.Logger
}

// NewContactService 构造 ContactService
func NewContactService(transport mailer.Transport, settings ContactSettings, logger *slog.Logger) *ContactService {
	if logger == nil {
		logger = slog.Default()
	}
	settings.DefaultFrom = strings.TrimSpace(settings.DefaultFrom)
	settings.SiteURL = strings.TrimRight(strings.TrimSpace(settings.SiteURL), "/")
	return &ContactService{transport: transport, settings: settings, logger: logger}
}

// Notify 使用资料自己的邮箱与凭据发送通知。
// 主人通知失败返回 ErrDeliveryFailed；确认邮件失败只记录日志。
func (s *ContactService) Notify(ctx context.Context, profile *db.SiteProfile, form ContactForm) (ContactResult, error) {
	if profile == nil || strings.TrimSpace(profile.Email) == "" || strings.TrimSpace(profile.MailCredential) == "" {
		metrics.ObserveContact(metrics.ContactIncomplete)
		return ContactResult{}, ErrConfigurationIncomplete
	}

	form = normalizeContactForm(form)
	if form.Email == "" || !strings.Contains(form.Email, "@") || form.Message == "" {
		metrics.ObserveContact(metrics.ContactInvalid)
		return ContactResult{}, ErrContactInvalid
	}

	owner := strings.TrimSpace(profile.Email)
	creds := mailer.Credentials{Username: owner, Password: profile.MailCredential}

	notification := mailer.Message{
		From:    owner,
		Sender:  s.settings.DefaultFrom,
		To:      owner,
		ReplyTo: form.Email,
		Subject: ownerSubject(form),
		Body:    ownerBody(form),
	}
	if err := s.transport.Send(ctx, creds, notification); err != nil {
		metrics.ObserveContact(metrics.ContactFailed)
		s.logger.ErrorContext(ctx, "contact notification failed",
			slog.String("profile", profile.Slug),
			slog.Any("error", err),
		)
		return ContactResult{}, fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	metrics.ObserveContact(metrics.ContactDelivered)

	var result ContactResult
	if !profile.EnableConfirmationEmail {
		return result, nil
	}

	confirmation := mailer.Message{
		From:    owner,
		Sender:  s.settings.DefaultFrom,
		To:      form.Email,
		Subject: "Confirmation de réception de votre message",
		Body:    confirmationBody(profile, form, s.settings.SiteURL),
	}
	if err := s.transport.Send(ctx, creds, confirmation); err != nil {
		metrics.ObserveContact(metrics.ContactConfirmError)
		s.logger.WarnContext(ctx, "contact confirmation failed",
			slog.String("profile", profile.Slug),
			slog.Any("error", err),
		)
		return result, nil
	}
	metrics.ObserveContact(metrics.ContactConfirmed)
	result.ConfirmationSent = true
	return result, nil
}

func normalizeContactForm(form ContactForm) ContactForm {
	form.Name = strings.TrimSpace(form.Name)
	form.Email = strings.TrimSpace(form.Email)
	form.Company = strings.TrimSpace(form.Company)
	form.Profession = strings.TrimSpace(form.Profession)
	form.Subject = strings.TrimSpace(form.Subject)
	form.Message = strings.TrimSpace(form.Message)
	return form
}

func ownerSubject(form ContactForm) string {
	sender := form.Name
	if sender == "" {
		sender = "Visiteur"
	}
	if form.Subject != "" {
		return fmt.Sprintf("Contact depuis le site : %s (%s)", form.Subject, sender)
	}
	return "Contact depuis le site : " + sender
}

func ownerBody(form ContactForm) string {
	var b strings.Builder
	b.WriteString("Vous avez reçu un nouveau message depuis le formulaire de contact.\n\n")
	fmt.Fprintf(&b, "Nom : %s\n", orDash(form.Name))
	fmt.Fprintf(&b, "Email : %s\n", form.Email)
	fmt.Fprintf(&b, "Entreprise : %s\n", orDash(form.Company))
	fmt.Fprintf(&b, "Profession : %s\n", orDash(form.Profession))
	fmt.Fprintf(&b, "Sujet : %s\n\n", orDash(form.Subject))
	b.WriteString("Message :\n")
	b.WriteString(form.Message)
	b.WriteString("\n")
	return b.String()
}

func confirmationBody(profile *db.SiteProfile, form ContactForm, siteURL string) string {
	greeting := "Bonjour"
	if form.Name != "" {
		greeting += " " + form.Name
	}

	var b strings.Builder
	b.WriteString(greeting + ",\n\n")
	b.WriteString("Merci pour votre message. Je l'ai bien reçu et je vous répondrai dans les plus brefs délais.\n\n")
	b.WriteString("Rappel de votre message :\n")
	b.WriteString(form.Message)
	b.WriteString("\n\nCordialement,\n")
	b.WriteString(profile.FullName())
	b.WriteString("\n")
	if siteURL != "" {
		b.WriteString(siteURL + ProfilePath(profile) + "\n")
	}
	return b.String()
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
