package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// PublishConfig locates the SFTP server reports are uploaded to.
type PublishConfig struct {
	Host                  string        `mapstructure:"host"`
	Port                  int           `mapstructure:"port"`
	User                  string        `mapstructure:"user"`
	Password              string        `mapstructure:"password"`
	KeyFile               string        `mapstructure:"key_file"`
	KnownHostsFile        string        `mapstructure:"known_hosts"`
	InsecureIgnoreHostKey bool          `mapstructure:"insecure_ignore_host_key"`
	RemoteDir             string        `mapstructure:"remote_dir"`
	Compress              bool          `mapstructure:"compress"`
	Timeout               time.Duration `mapstructure:"timeout"`
}

// Enabled reports whether a host is configured.
func (c PublishConfig) Enabled() bool {
	return c.Host != ""
}

// ErrPublishNotConfigured is returned when publishing without a host.
var ErrPublishNotConfigured = errors.New("report publishing is not configured")

func (c PublishConfig) withDefaults() PublishConfig {
	if c.Port <= 0 {
		c.Port = 22
	}
	if c.RemoteDir == "" {
		c.RemoteDir = "/"
	}
	if c.Timeout <= 0 {
		c.Timeout = 20 * time.Second
	}
	return c
}

func (c PublishConfig) clientConfig() (*ssh.ClientConfig, error) {
	var auth []ssh.AuthMethod
	if c.KeyFile != "" {
		pem, err := os.ReadFile(c.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("read key file: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(pem)
		if err != nil {
			return nil, fmt.Errorf("parse key file: %w", err)
		}
		auth = append(auth, ssh.PublicKeys(signer))
	}
	if c.Password != "" {
		auth = append(auth, ssh.Password(c.Password))
	}
	if c.User == "" || len(auth) == 0 {
		return nil, fmt.Errorf("sftp: user and a password or key file are required")
	}

	var hostKey ssh.HostKeyCallback
	switch {
	case c.KnownHostsFile != "":
		cb, err := knownhosts.New(c.KnownHostsFile)
		if err != nil {
			return nil, fmt.Errorf("load known hosts: %w", err)
		}
		hostKey = cb
	case c.InsecureIgnoreHostKey:
		hostKey = ssh.InsecureIgnoreHostKey()
	default:
		return nil, fmt.Errorf("sftp: known_hosts is required unless insecure_ignore_host_key is set")
	}

	return &ssh.ClientConfig{
		User:            c.User,
		Auth:            auth,
		HostKeyCallback: hostKey,
		Timeout:         c.Timeout,
	}, nil
}

// Publish uploads content as name under the configured remote directory
// and returns the remote path. With Compress set the upload is
// brotli-compressed and ".br" is appended to the name.
func Publish(ctx context.Context, cfg PublishConfig, name string, content []byte) (string, error) {
	if !cfg.Enabled() {
		return "", ErrPublishNotConfigured
	}
	cfg = cfg.withDefaults()

	sshCfg, err := cfg.clientConfig()
	if err != nil {
		return "", err
	}

	if cfg.Compress {
		content, err = Compress(content)
		if err != nil {
			return "", err
		}
		name += ".br"
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	type dialResult struct {
		client *ssh.Client
		err    error
	}
	ch := make(chan dialResult, 1)
	go func() {
		c, err := ssh.Dial("tcp", addr, sshCfg)
		ch <- dialResult{client: c, err: err}
	}()

	var sshClient *ssh.Client
	select {
	case <-ctx.Done():
		go func() {
			if r := <-ch; r.client != nil {
				r.client.Close()
			}
		}()
		return "", fmt.Errorf("sftp: dial canceled: %w", ctx.Err())
	case r := <-ch:
		if r.err != nil {
			return "", fmt.Errorf("sftp: dial: %w", r.err)
		}
		sshClient = r.client
	}
	defer sshClient.Close()

	client, err := sftp.NewClient(sshClient)
	if err != nil {
		return "", fmt.Errorf("sftp: new client: %w", err)
	}
	defer client.Close()

	if err := client.MkdirAll(cfg.RemoteDir); err != nil {
		return "", fmt.Errorf("sftp: mkdir %s: %w", cfg.RemoteDir, err)
	}

	remotePath := path.Join(cfg.RemoteDir, path.Base(name))
	dst, err := client.Create(remotePath)
	if err != nil {
		return "", fmt.Errorf("sftp: create %s: %w", remotePath, err)
	}
	if _, err := io.Copy(dst, bytes.NewReader(content)); err != nil {
		dst.Close()
		return "", fmt.Errorf("sftp: upload: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("sftp: close %s: %w", remotePath, err)
	}
	return remotePath, nil
}

// Compress brotli-encodes content at the default quality.
func Compress(content []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := brotli.NewWriterLevel(&buf, brotli.DefaultCompression)
	if _, err := w.Write(content); err != nil {
		return nil, fmt.Errorf("compress report: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("compress report: %w", err)
	}
	return buf.Bytes(), nil
}
