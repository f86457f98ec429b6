package keychain

import (
	"encoding/hex"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/kbukum/vimeonet/encryption"
	"github.com/kbukum/vimeonet/storage"
)

// FileStore keeps encrypted items in a directory scoped by service and
// access group. Item files are named by the hex encoded key and bound to
// their scope, so a file copied between scopes fails to decrypt.
type FileStore struct {
	service     string
	accessGroup string
	dir         *storage.Dir
	enc         encryption.Encryptor
}

// NewFileStore creates a FileStore below root.
func NewFileStore(root, service, accessGroup string, enc encryption.Encryptor) (*FileStore, error) {
	if service == "" {
		return nil, newError(StatusParam, "", errors.New("service is required"))
	}
	if enc == nil {
		return nil, newError(StatusParam, "", errors.New("encryptor is required"))
	}
	scope := hex.EncodeToString([]byte(service))
	if accessGroup != "" {
		scope += "-" + hex.EncodeToString([]byte(accessGroup))
	}
	dir, err := storage.NewDir(filepath.Join(root, scope))
	if err != nil {
		return nil, newError(StatusParam, "", err)
	}
	return &FileStore{service: service, accessGroup: accessGroup, dir: dir, enc: enc}, nil
}

// Service returns the service name.
func (s *FileStore) Service() string { return s.service }

// AccessGroup returns the access group, or "".
func (s *FileStore) AccessGroup() string { return s.accessGroup }

// Set implements Store. Existing items are replaced.
func (s *FileStore) Set(data []byte, key string) error {
	if key == "" {
		return newError(StatusParam, key, nil)
	}
	sealed, err := s.enc.Seal(data, s.associated(key))
	if err != nil {
		return newError(StatusAllocate, key, err)
	}
	if err := s.dir.Write(fileName(key), sealed); err != nil {
		return newError(ioStatus(err), key, err)
	}
	return nil
}

// Get implements Store.
func (s *FileStore) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, newError(StatusParam, key, nil)
	}
	sealed, err := s.dir.Read(fileName(key))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, newError(ioStatus(err), key, err)
	}
	data, err := s.enc.Open(sealed, s.associated(key))
	if err != nil {
		return nil, newError(StatusDecode, key, err)
	}
	return data, nil
}

// Delete implements Store.
func (s *FileStore) Delete(key string) error {
	if key == "" {
		return newError(StatusParam, key, nil)
	}
	if err := s.dir.Delete(fileName(key)); err != nil {
		return newError(ioStatus(err), key, err)
	}
	return nil
}

func (s *FileStore) associated(key string) []byte {
	return []byte(strings.Join([]string{s.service, s.accessGroup, key}, "\x00"))
}

func fileName(key string) string {
	return hex.EncodeToString([]byte(key))
}

func ioStatus(err error) Status {
	switch {
	case errors.Is(err, fs.ErrPermission):
		return StatusAuthFailed
	case errors.Is(err, storage.ErrInvalidName):
		return StatusParam
	default:
		return StatusNotAvailable
	}
}

var _ Store = (*FileStore)(nil)
