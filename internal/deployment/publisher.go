// Package deployment publishes exported matchup files to a remote host over
// SSH so a static site can serve them.
package deployment

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"cr_matchup_stats/internal/config"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

const defaultSSHPort = "22"

// Target is a parsed user@host[:port]:path destination
type Target struct {
	User string
	Host string
	Port string
	Dir  string
}

// Addr returns the host:port to dial
func (t Target) Addr() string {
	return net.JoinHostPort(t.Host, t.Port)
}

// RemotePath returns the remote path of filename inside Dir
func (t Target) RemotePath(filename string) string {
	return path.Join(t.Dir, filename)
}

// ParseTarget parses a deploy URL of the form user@host:path or
// user@host:port:path
func ParseTarget(deployURL string) (Target, error) {
	if deployURL == "" {
		return Target{}, fmt.Errorf("deploy URL is empty")
	}

	user, hostPath, ok := strings.Cut(deployURL, "@")
	if !ok || user == "" {
		return Target{}, fmt.Errorf("invalid deploy URL format: expected user@host:path")
	}

	parts := strings.SplitN(hostPath, ":", 3)
	target := Target{User: user, Port: defaultSSHPort}
	switch len(parts) {
	case 2:
		target.Host, target.Dir = parts[0], parts[1]
	case 3:
		target.Host, target.Port, target.Dir = parts[0], parts[1], parts[2]
	default:
		return Target{}, fmt.Errorf("invalid deploy URL format: expected user@host:path")
	}

	if target.Host == "" || target.Dir == "" || target.Port == "" {
		return Target{}, fmt.Errorf("invalid deploy URL format: expected user@host:path")
	}

	return target, nil
}

// Publisher copies local files to a Target via SCP
type Publisher struct {
	target         Target
	keyPath        string
	knownHostsPath string
	retry          config.RetryConfig
	client         *ssh.Client
}

// NewPublisher creates a publisher for deployURL authenticating with the
// private key at keyPath
func NewPublisher(deployURL, keyPath string) (*Publisher, error) {
	target, err := ParseTarget(deployURL)
	if err != nil {
		return nil, err
	}

	return &Publisher{
		target:  target,
		keyPath: keyPath,
		retry:   config.DefaultResilienceConfig.Export,
	}, nil
}

// WithKnownHosts verifies the server key against a known_hosts file
func (p *Publisher) WithKnownHosts(knownHostsPath string) *Publisher {
	p.knownHostsPath = knownHostsPath
	return p
}

// Target returns the parsed destination
func (p *Publisher) Target() Target {
	return p.target
}

func (p *Publisher) hostKeyCallback() (ssh.HostKeyCallback, error) {
	if p.knownHostsPath == "" {
		log.Warn().
			Str("host", p.target.Host).
			Msg("No known_hosts file configured, host key will not be verified")
		return ssh.InsecureIgnoreHostKey(), nil
	}
	return knownhosts.New(p.knownHostsPath)
}

func (p *Publisher) connect() error {
	if p.client != nil {
		return nil
	}

	keyData, err := os.ReadFile(p.keyPath)
	if err != nil {
		return fmt.Errorf("failed to read SSH key file %s: %w", p.keyPath, err)
	}

	signer, err := ssh.ParsePrivateKey(keyData)
	if err != nil {
		return fmt.Errorf("failed to parse SSH private key: %w", err)
	}

	hostKeyCallback, err := p.hostKeyCallback()
	if err != nil {
		return fmt.Errorf("failed to load known hosts: %w", err)
	}

	clientConfig := &ssh.ClientConfig{
		User:            p.target.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: hostKeyCallback,
		Timeout:         30 * time.Second,
	}

	p.client, err = ssh.Dial("tcp", p.target.Addr(), clientConfig)
	if err != nil {
		return fmt.Errorf("failed to connect to SSH server %s: %w", p.target.Addr(), err)
	}

	log.Info().
		Str("host", p.target.Host).
		Str("user", p.target.User).
		Msg("Connected to SSH server")

	return nil
}

// Close closes the SSH connection if one is open
func (p *Publisher) Close() error {
	if p.client == nil {
		return nil
	}
	err := p.client.Close()
	p.client = nil
	return err
}

// Publish uploads localPath into the target directory under its base name,
// retrying failed uploads with a fresh connection
func (p *Publisher) Publish(ctx context.Context, localPath string) error {
	attempts := p.retry.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = p.publishOnce(localPath); err == nil {
			return nil
		}
		_ = p.Close()
		if attempt == attempts {
			break
		}

		wait := p.retry.Backoff(attempt)
		log.Warn().
			Err(err).
			Str("local_path", localPath).
			Int("attempt", attempt).
			Dur("wait", wait).
			Msg("Publish failed, retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}

	return fmt.Errorf("publish failed after %d attempts: %w", attempts, err)
}

func (p *Publisher) publishOnce(localPath string) error {
	if err := p.connect(); err != nil {
		return err
	}

	localFile, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open local file %s: %w", localPath, err)
	}
	defer localFile.Close()

	fileInfo, err := localFile.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat local file: %w", err)
	}

	session, err := p.client.NewSession()
	if err != nil {
		return fmt.Errorf("failed to create SSH session: %w", err)
	}
	defer session.Close()

	filename := filepath.Base(localPath)
	remotePath := p.target.RemotePath(filename)

	stdin, err := session.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to get stdin pipe: %w", err)
	}

	if err := session.Start(fmt.Sprintf("scp -t %s", remotePath)); err != nil {
		return fmt.Errorf("failed to start SCP session: %w", err)
	}

	if err := WriteSCP(stdin, filename, fileInfo.Size(), localFile); err != nil {
		return err
	}

	stdin.Close()
	if err := session.Wait(); err != nil {
		return fmt.Errorf("SCP session failed: %w", err)
	}

	log.Info().
		Str("local_path", localPath).
		Str("remote_path", remotePath).
		Int64("size", fileInfo.Size()).
		Msg("Published file via SCP")

	return nil
}

// WriteSCP writes one file in SCP sink protocol framing: a C-record header,
// exactly size bytes of content and a terminating zero byte
func WriteSCP(w io.Writer, filename string, size int64, content io.Reader) error {
	if strings.ContainsAny(filename, "/\n") {
		return fmt.Errorf("invalid SCP file name %q", filename)
	}

	if _, err := fmt.Fprintf(w, "C0644 %d %s\n", size, filename); err != nil {
		return fmt.Errorf("failed to write SCP header: %w", err)
	}

	copied, err := io.CopyN(w, content, size)
	if err != nil {
		return fmt.Errorf("failed to copy file content after %d bytes: %w", copied, err)
	}

	if _, err := w.Write([]byte{0}); err != nil {
		return fmt.Errorf("failed to write SCP end marker: %w", err)
	}

	return nil
}
