// Package mailer SMTP 기반 HTML 메일 발송 클라이언트
package mailer

import (
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Config 메일 발송 설정
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
	UseSSL   bool
	CC       []string
}

// Mailer SMTP 메일 발송기
type Mailer struct {
	cfg    Config
	logger *zap.Logger
}

// New 메일 발송기 생성
func New(cfg Config, logger *zap.Logger) *Mailer {
	return &Mailer{cfg: cfg, logger: logger}
}

// Enabled 발송 가능 여부 (호스트/발신자 미설정 시 발송 생략)
func (m *Mailer) Enabled() bool {
	return m.cfg.Host != "" && m.cfg.From != ""
}

// SendHTML HTML 본문 메일 발송. 설정된 CC 목록이 함께 수신한다.
func (m *Mailer) SendHTML(to []string, subject, htmlBody string) error {
	if !m.Enabled() {
		m.logger.Warn("SMTP not configured, skipping mail",
			zap.Strings("to", to),
			zap.String("subject", subject))
		return nil
	}
	if len(to) == 0 {
		return fmt.Errorf("no recipients")
	}

	recipients := make([]string, 0, len(to)+len(m.cfg.CC))
	recipients = append(recipients, to...)
	recipients = append(recipients, m.cfg.CC...)

	msg := m.buildMessage(to, subject, htmlBody)
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	var err error
	if m.cfg.UseSSL {
		err = m.sendImplicitTLS(addr, recipients, msg)
	} else {
		err = m.sendStartTLS(addr, recipients, msg)
	}
	if err != nil {
		m.logger.Error("Failed to send mail",
			zap.Strings("to", to),
			zap.String("subject", subject),
			zap.Error(err))
		return fmt.Errorf("failed to send mail: %w", err)
	}

	m.logger.Info("Mail sent",
		zap.Strings("to", to),
		zap.Int("cc", len(m.cfg.CC)),
		zap.String("subject", subject))
	return nil
}

func (m *Mailer) buildMessage(to []string, subject, htmlBody string) []byte {
	var b strings.Builder
	from := m.cfg.From
	if m.cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", m.cfg.FromName), m.cfg.From)
	}
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + strings.Join(to, ", ") + "\r\n")
	if len(m.cfg.CC) > 0 {
		b.WriteString("Cc: " + strings.Join(m.cfg.CC, ", ") + "\r\n")
	}
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	b.WriteString("Date: " + time.Now().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}

// sendStartTLS 평문 접속 후 STARTTLS 업그레이드 (587 포트)
func (m *Mailer) sendStartTLS(addr string, recipients []string, msg []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return err
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: m.cfg.Host}); err != nil {
			return err
		}
	}
	return m.transact(client, recipients, msg)
}

// sendImplicitTLS TLS로 바로 접속 (465 포트)
func (m *Mailer) sendImplicitTLS(addr string, recipients []string, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: m.cfg.Host})
	if err != nil {
		return err
	}
	host, _, _ := net.SplitHostPort(addr)
	client, err := smtp.NewClient(conn, host)
	if err != nil {
		conn.Close()
		return err
	}
	defer client.Close()
	return m.transact(client, recipients, msg)
}

func (m *Mailer) transact(client *smtp.Client, recipients []string, msg []byte) error {
	if m.cfg.User != "" {
		auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
	}
	if err := client.Mail(m.cfg.From); err != nil {
		return err
	}
	for _, rcpt := range recipients {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}
