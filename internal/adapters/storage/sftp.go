package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"path"
	"sync"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/runsheet/core/internal/infrastructure/logger"
	"github.com/runsheet/core/internal/ports"
)

// SFTPConfig describes the upload target. Either Password or PrivateKey
// must be set. An empty HostKeyFingerprint accepts any host key.
type SFTPConfig struct {
	Host               string
	Port               int
	Username           string
	Password           string
	PrivateKey         string
	Passphrase         string
	HostKeyFingerprint string
	RootDir            string
	BaseURL            string
	Timeout            time.Duration
}

// SFTPStore uploads artifacts over SFTP. The connection is opened lazily,
// shared by concurrent uploads and re-established once after a failure.
type SFTPStore struct {
	cfg    SFTPConfig
	logger *logger.Logger

	mu         sync.Mutex
	sshClient  *ssh.Client
	sftpClient *sftp.Client
}

var _ ports.BlobStore = (*SFTPStore)(nil)

func NewSFTPStore(cfg SFTPConfig, log *logger.Logger) *SFTPStore {
	if cfg.Port == 0 {
		cfg.Port = 22
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &SFTPStore{cfg: cfg, logger: log}
}

func (s *SFTPStore) Put(ctx context.Context, p, _ string, data []byte) error {
	clean, err := cleanPath(p)
	if err != nil {
		return err
	}
	remote := path.Join(s.cfg.RootDir, clean)

	for attempt := 0; attempt < 2; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		var client *sftp.Client
		client, err = s.client()
		if err != nil {
			return err
		}
		if err = upload(sftpFS{client}, remote, bytes.NewReader(data)); err == nil {
			return nil
		}
		s.logger.Warnw("SFTP upload failed, reconnecting", "path", remote, "attempt", attempt+1, "error", err)
		s.reset()
	}
	return fmt.Errorf("upload %s: %w", remote, err)
}

func (s *SFTPStore) PublicURL(p string) string {
	return publicURL(s.cfg.BaseURL, p)
}

// Close releases the connection.
func (s *SFTPStore) Close() error {
	s.reset()
	return nil
}

// remoteFS is the part of *sftp.Client an upload needs.
type remoteFS interface {
	MkdirAll(dir string) error
	Create(name string) (io.WriteCloser, error)
}

type sftpFS struct{ *sftp.Client }

func (c sftpFS) Create(name string) (io.WriteCloser, error) {
	return c.Client.Create(name)
}

// upload reports a failed close: the remote file is only complete once it
// has been flushed and closed.
func upload(fs remoteFS, remote string, content io.Reader) (err error) {
	if err := fs.MkdirAll(path.Dir(remote)); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := fs.Create(remote)
	if err != nil {
		return fmt.Errorf("failed to create remote file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close remote file: %w", cerr)
		}
	}()

	if _, err := io.Copy(file, content); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func (s *SFTPStore) client() (*sftp.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sftpClient != nil {
		return s.sftpClient, nil
	}

	sshClient, err := s.dial()
	if err != nil {
		return nil, err
	}
	sftpClient, err := sftp.NewClient(sshClient)
	if err != nil {
		sshClient.Close()
		return nil, fmt.Errorf("failed to create SFTP client: %w", err)
	}

	s.sshClient, s.sftpClient = sshClient, sftpClient
	return sftpClient, nil
}

func (s *SFTPStore) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sftpClient != nil {
		s.sftpClient.Close()
		s.sftpClient = nil
	}
	if s.sshClient != nil {
		s.sshClient.Close()
		s.sshClient = nil
	}
}

func (s *SFTPStore) dial() (*ssh.Client, error) {
	auth, err := authMethods(s.cfg)
	if err != nil {
		return nil, err
	}

	sshConfig := &ssh.ClientConfig{
		User:            s.cfg.Username,
		Auth:            auth,
		HostKeyCallback: s.hostKeyCallback,
		Timeout:         s.cfg.Timeout,
	}

	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprint(s.cfg.Port))
	client, err := ssh.Dial("tcp", addr, sshConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	return client, nil
}

func (s *SFTPStore) hostKeyCallback(hostname string, _ net.Addr, key ssh.PublicKey) error {
	fingerprint := ssh.FingerprintSHA256(key)
	if s.cfg.HostKeyFingerprint == "" {
		s.logger.Warnw("SFTP host key not pinned", "host", hostname, "fingerprint", fingerprint)
		return nil
	}
	if fingerprint != s.cfg.HostKeyFingerprint {
		return fmt.Errorf("host key mismatch: expected %s, got %s", s.cfg.HostKeyFingerprint, fingerprint)
	}
	return nil
}

func authMethods(cfg SFTPConfig) ([]ssh.AuthMethod, error) {
	var methods []ssh.AuthMethod

	if cfg.Password != "" {
		methods = append(methods, ssh.Password(cfg.Password))
	}

	if cfg.PrivateKey != "" {
		var signer ssh.Signer
		var err error
		if cfg.Passphrase != "" {
			signer, err = ssh.ParsePrivateKeyWithPassphrase([]byte(cfg.PrivateKey), []byte(cfg.Passphrase))
		} else {
			signer, err = ssh.ParsePrivateKey([]byte(cfg.PrivateKey))
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}

	if len(methods) == 0 {
		return nil, errors.New("no authentication method provided")
	}
	return methods, nil
}
