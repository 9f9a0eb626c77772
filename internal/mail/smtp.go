package mail

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
)

// SMTPSender 通过 SMTP 发送，配置了用户名时使用 PLAIN 认证
type SMTPSender struct {
	addr string
	host string
	auth smtp.Auth
}

func NewSMTPSender(host, port, user, password string) *SMTPSender {
	s := &SMTPSender{
		addr: net.JoinHostPort(host, port),
		host: host,
	}
	if user != "" {
		s.auth = smtp.PlainAuth("", user, password, host)
	}
	return s
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := smtp.SendMail(s.addr, s.auth, msg.From, msg.To, msg.Format()); err != nil {
		return fmt.Errorf("smtp send to %v: %w", msg.To, err)
	}
	return nil
}
