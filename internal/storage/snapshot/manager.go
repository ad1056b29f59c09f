package snapshot

import (
	"bufio"
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/peermeet/peermeet-go/internal/core/domain"
)

// Magic bytes identify snapshot files.
var magicBytes = []byte("PMRGSNAP")

const (
	filePrefix    = "snapshot-"
	fileExtension = ".snap"
	checksumSize  = 32
	headerVersion = 1

	DefaultRetentionCount = 5
	DefaultRetentionDays  = 7
)

var (
	ErrInvalidMagic     = errors.New("snapshot: invalid magic bytes")
	ErrChecksumMismatch = errors.New("snapshot: checksum mismatch")
	ErrNoSnapshots      = errors.New("snapshot: no snapshots available")
)

type snapshotHeader struct {
	Version    int   `json:"version"`
	CreatedAt  int64 `json:"created_at"`
	GroupCount int   `json:"group_count"`
	Encrypted  bool  `json:"encrypted"`
}

// snapshotPeer is the persisted form of a PeerRecord: everything the
// registry needs to rebuild the member verbatim.
type snapshotPeer struct {
	PeerID        string            `json:"peer_id"`
	Name          string            `json:"name"`
	Endpoint      string            `json:"endpoint"`
	TTLSeconds    int64             `json:"ttl_seconds"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	SourceAddress string            `json:"source_address"`
	RegisteredAt  int64             `json:"registered_at"`
}

func snapshotPeerFromDomain(p *domain.PeerRecord) snapshotPeer {
	return snapshotPeer{
		PeerID:        p.PeerID,
		Name:          p.Name,
		Endpoint:      p.Endpoint,
		TTLSeconds:    p.TTLSeconds,
		Metadata:      p.Metadata,
		SourceAddress: p.SourceAddress,
		RegisteredAt:  p.RegisteredAt,
	}
}

func (p snapshotPeer) toDomain() *domain.PeerRecord {
	return &domain.PeerRecord{
		PeerID:        p.PeerID,
		Name:          p.Name,
		Endpoint:      p.Endpoint,
		TTLSeconds:    p.TTLSeconds,
		Metadata:      p.Metadata,
		SourceAddress: p.SourceAddress,
		RegisteredAt:  p.RegisteredAt,
	}
}

// Config configures the snapshot manager.
type Config struct {
	Dir string

	RetentionCount int
	RetentionDays  int

	Cipher Cipher
}

// DefaultConfig returns a config with default retention for a directory.
func DefaultConfig(dir string) Config {
	return Config{
		Dir:            dir,
		RetentionCount: DefaultRetentionCount,
		RetentionDays:  DefaultRetentionDays,
	}
}

// Manager creates, loads, lists, and prunes snapshot files.
type Manager struct {
	cfg    Config
	cipher Cipher
}

// NewManager creates a snapshot manager, creating the directory if needed.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("snapshot: dir is required")
	}
	if err := os.MkdirAll(cfg.Dir, 0750); err != nil {
		return nil, fmt.Errorf("snapshot: create dir: %w", err)
	}
	if cfg.RetentionCount == 0 {
		cfg.RetentionCount = DefaultRetentionCount
	}
	if cfg.RetentionDays == 0 {
		cfg.RetentionDays = DefaultRetentionDays
	}

	return &Manager{
		cfg:    cfg,
		cipher: cfg.Cipher,
	}, nil
}

// Info contains metadata about a snapshot file.
type Info struct {
	ID         string `json:"id"`
	GroupCount int    `json:"group_count"`
	CreatedAt  int64  `json:"created_at"`
	Size       int64  `json:"size"`
	Path       string `json:"path"`
	Checksum   string `json:"checksum"`
}

// writeBlock appends a 4-byte big-endian length prefix followed by b.
func writeBlock(buf *bytes.Buffer, b []byte) {
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], uint32(len(b)))
	buf.Write(n[:])
	buf.Write(b)
}

// Create writes a new snapshot of the given groups. Members are stored
// verbatim, expired ones included. The whole file is assembled in
// memory first so the checksum trailer is computed in one pass and the
// rename publishes a complete file or nothing.
func (m *Manager) Create(groups map[string][]*domain.PeerRecord) (*Info, error) {
	now := time.Now()
	id := m.generateID(now)

	hdrJSON, err := json.Marshal(snapshotHeader{
		Version:    headerVersion,
		CreatedAt:  now.UnixMilli(),
		GroupCount: len(groups),
		Encrypted:  m.cipher != nil,
	})
	if err != nil {
		return nil, fmt.Errorf("snapshot: marshal header: %w", err)
	}

	encoded := make(map[string][]snapshotPeer, len(groups))
	for key, members := range groups {
		peers := make([]snapshotPeer, 0, len(members))
		for _, p := range members {
			peers = append(peers, snapshotPeerFromDomain(p))
		}
		encoded[key] = peers
	}
	data, err := json.Marshal(encoded)
	if err != nil {
		return nil, fmt.Errorf("snapshot: marshal groups: %w", err)
	}
	if m.cipher != nil {
		if data, err = m.cipher.Encrypt(data); err != nil {
			return nil, fmt.Errorf("snapshot: encrypt: %w", err)
		}
	}

	var buf bytes.Buffer
	buf.Write(magicBytes)
	writeBlock(&buf, hdrJSON)
	writeBlock(&buf, data)
	sum := sha256.Sum256(buf.Bytes())
	buf.Write(sum[:])

	tempPath := filepath.Join(m.cfg.Dir, id+".tmp")
	file, err := os.Create(tempPath)
	if err != nil {
		return nil, fmt.Errorf("snapshot: create temp file: %w", err)
	}
	defer os.Remove(tempPath)

	size := int64(buf.Len())
	if _, err := file.Write(buf.Bytes()); err != nil {
		file.Close()
		return nil, fmt.Errorf("snapshot: write: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return nil, fmt.Errorf("snapshot: sync: %w", err)
	}
	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("snapshot: close: %w", err)
	}

	finalPath := filepath.Join(m.cfg.Dir, id+fileExtension)
	if err := os.Rename(tempPath, finalPath); err != nil {
		return nil, fmt.Errorf("snapshot: rename: %w", err)
	}

	return &Info{
		ID:         id,
		GroupCount: len(groups),
		CreatedAt:  now.UnixMilli(),
		Size:       size,
		Path:       finalPath,
		Checksum:   hex.EncodeToString(sum[:]),
	}, nil
}

// Load loads groups from the latest valid snapshot, falling back to
// older files when the newest is corrupted. The caller applies the
// expiration filter before inserting into the store.
func (m *Manager) Load() (map[string][]*domain.PeerRecord, *Info, error) {
	infos, err := m.List()
	if err != nil {
		return nil, nil, err
	}
	if len(infos) == 0 {
		return nil, nil, ErrNoSnapshots
	}

	for i := len(infos) - 1; i >= 0; i-- {
		groups, info, err := m.loadFile(infos[i].Path)
		if err == nil {
			return groups, info, nil
		}
		if errors.Is(err, ErrChecksumMismatch) || errors.Is(err, ErrInvalidMagic) {
			continue
		}
		return nil, nil, err
	}

	return nil, nil, ErrNoSnapshots
}

func (m *Manager) loadFile(path string) (map[string][]*domain.PeerRecord, *Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, nil, err
	}
	if stat.Size() < int64(len(magicBytes))+checksumSize {
		return nil, nil, ErrChecksumMismatch
	}

	// Verify the trailer before trusting any field.
	bodyLen := stat.Size() - checksumSize
	expected := make([]byte, checksumSize)
	if _, err := io.ReadFull(io.NewSectionReader(f, bodyLen, checksumSize), expected); err != nil {
		return nil, nil, err
	}
	h := sha256.New()
	if _, err := io.CopyN(h, io.NewSectionReader(f, 0, bodyLen), bodyLen); err != nil {
		return nil, nil, err
	}
	if !bytes.Equal(h.Sum(nil), expected) {
		return nil, nil, ErrChecksumMismatch
	}

	br := bufio.NewReader(io.NewSectionReader(f, 0, bodyLen))

	magic := make([]byte, len(magicBytes))
	if _, err := io.ReadFull(br, magic); err != nil {
		return nil, nil, err
	}
	if !bytes.Equal(magic, magicBytes) {
		return nil, nil, ErrInvalidMagic
	}

	var hdrLenBuf [4]byte
	if _, err := io.ReadFull(br, hdrLenBuf[:]); err != nil {
		return nil, nil, err
	}
	hdrLen := binary.BigEndian.Uint32(hdrLenBuf[:])
	if hdrLen == 0 {
		return nil, nil, fmt.Errorf("snapshot: empty header")
	}
	hdrJSON := make([]byte, hdrLen)
	if _, err := io.ReadFull(br, hdrJSON); err != nil {
		return nil, nil, err
	}

	var hdr snapshotHeader
	if err := json.Unmarshal(hdrJSON, &hdr); err != nil {
		return nil, nil, fmt.Errorf("snapshot: unmarshal header: %w", err)
	}

	var dataLenBuf [4]byte
	if _, err := io.ReadFull(br, dataLenBuf[:]); err != nil {
		return nil, nil, err
	}
	data := make([]byte, binary.BigEndian.Uint32(dataLenBuf[:]))
	if _, err := io.ReadFull(br, data); err != nil {
		return nil, nil, err
	}

	if hdr.Encrypted {
		if m.cipher == nil {
			return nil, nil, fmt.Errorf("snapshot: file is encrypted and no key is configured")
		}
		data, err = m.cipher.Decrypt(data)
		if err != nil {
			return nil, nil, err
		}
	} else if m.cipher != nil {
		return nil, nil, fmt.Errorf("snapshot: expected encrypted snapshot")
	}

	var decoded map[string][]snapshotPeer
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, nil, fmt.Errorf("snapshot: unmarshal groups: %w", err)
	}

	groups := make(map[string][]*domain.PeerRecord, len(decoded))
	for key, peers := range decoded {
		members := make([]*domain.PeerRecord, 0, len(peers))
		for _, p := range peers {
			members = append(members, p.toDomain())
		}
		groups[key] = members
	}

	info := &Info{
		ID:         strings.TrimSuffix(filepath.Base(path), fileExtension),
		GroupCount: hdr.GroupCount,
		CreatedAt:  hdr.CreatedAt,
		Size:       stat.Size(),
		Path:       path,
		Checksum:   hex.EncodeToString(expected),
	}

	return groups, info, nil
}

// List lists snapshot files (metadata only), oldest first.
func (m *Manager) List() ([]*Info, error) {
	entries, err := os.ReadDir(m.cfg.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, filePrefix) && strings.HasSuffix(name, fileExtension) {
			paths = append(paths, filepath.Join(m.cfg.Dir, name))
		}
	}
	sort.Strings(paths)

	var infos []*Info
	for _, p := range paths {
		stat, err := os.Stat(p)
		if err != nil {
			continue
		}
		infos = append(infos, &Info{
			ID:   strings.TrimSuffix(filepath.Base(p), fileExtension),
			Path: p,
			Size: stat.Size(),
		})
	}
	return infos, nil
}

// Prune applies the retention policy and deletes old snapshots.
func (m *Manager) Prune() error {
	infos, err := m.List()
	if err != nil {
		return err
	}
	if len(infos) <= 1 {
		return nil
	}

	keep := make(map[string]struct{}, len(infos))

	if m.cfg.RetentionCount > 0 {
		start := len(infos) - m.cfg.RetentionCount
		if start < 0 {
			start = 0
		}
		for _, info := range infos[start:] {
			keep[info.Path] = struct{}{}
		}
	}

	if m.cfg.RetentionDays > 0 {
		cutoff := time.Now().Add(-time.Duration(m.cfg.RetentionDays) * 24 * time.Hour)
		for _, info := range infos {
			st, err := os.Stat(info.Path)
			if err != nil {
				continue
			}
			if st.ModTime().After(cutoff) {
				keep[info.Path] = struct{}{}
			}
		}
	}

	// Always keep at least the newest.
	keep[infos[len(infos)-1].Path] = struct{}{}

	for _, info := range infos {
		if _, ok := keep[info.Path]; ok {
			continue
		}
		_ = os.Remove(info.Path)
	}
	return nil
}

func (m *Manager) generateID(t time.Time) string {
	ts := t.Format("20060102150405")
	seq := 1

	entries, _ := os.ReadDir(m.cfg.Dir)
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, filePrefix+ts+"-") && strings.HasSuffix(name, fileExtension) {
			seq++
		}
	}

	return fmt.Sprintf("%s%s-%04d", filePrefix, ts, seq)
}
