package telegram

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"

	"github.com/cehokocof/telebio/internal/ports"
)

// Login runs the interactive authorization flow and returns the signed
// in account. Prompts go to out; phone, code and password come from in.
// The resulting session lands in the session file, so later Connect
// calls need no prompts.
func (c *Client) Login(ctx context.Context, in io.Reader, out io.Writer) (ports.Identity, error) {
	var identity ports.Identity

	flow := auth.NewFlow(&terminalAuth{
		in:  bufio.NewReader(in),
		out: out,
	}, auth.SendCodeOptions{})

	err := c.tc.Run(ctx, func(ctx context.Context) error {
		if err := c.tc.Auth().IfNecessary(ctx, flow); err != nil {
			return fmt.Errorf("authorization flow: %w", err)
		}

		self, err := c.tc.Self(ctx)
		if err != nil {
			return fmt.Errorf("fetching own account: %w", err)
		}
		identity = identityFrom(self)
		return nil
	})
	if err != nil {
		return ports.Identity{}, err
	}

	c.logger.Info(ctx, "authorized",
		ports.F("name", identity.FirstName),
		ports.F("id", identity.ID))
	return identity, nil
}

// terminalAuth prompts for credentials on the terminal. Signing up is
// refused; the account must already exist.
type terminalAuth struct {
	in  *bufio.Reader
	out io.Writer
}

func (t *terminalAuth) Phone(_ context.Context) (string, error) {
	return t.prompt("Phone number (international format): ")
}

func (t *terminalAuth) Code(_ context.Context, _ *tg.AuthSentCode) (string, error) {
	return t.prompt("Code from Telegram: ")
}

func (t *terminalAuth) Password(_ context.Context) (string, error) {
	return t.prompt("Two-factor password: ")
}

func (t *terminalAuth) AcceptTermsOfService(_ context.Context, tos tg.HelpTermsOfService) error {
	return &auth.SignUpRequired{TermsOfService: tos}
}

func (t *terminalAuth) SignUp(context.Context) (auth.UserInfo, error) {
	return auth.UserInfo{}, fmt.Errorf("sign up with an official Telegram app first")
}

func (t *terminalAuth) prompt(label string) (string, error) {
	if _, err := fmt.Fprint(t.out, label); err != nil {
		return "", err
	}
	line, err := t.in.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
