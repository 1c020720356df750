package services

import (
	"log/slog"
	"net"
	"os"
	"sync"

	"github.com/oschwald/geoip2-golang"
	"github.com/oschwald/maxminddb-golang"
)

// CountryLocator resolves a client IP to a country name for the audit trail.
type CountryLocator interface {
	Country(ip string) string
}

type geoReader interface {
	Country(ip net.IP) (*geoip2.Country, error)
	Metadata() maxminddb.Metadata
	Close() error
}

// GeoIPService looks up countries in a local MaxMind database. Without a
// database every lookup answers "Unknown".
type GeoIPService struct {
	logger *slog.Logger
	mu     sync.RWMutex
	reader geoReader
}

func NewGeoIPService(dbPath string, logger *slog.Logger) *GeoIPService {
	s := &GeoIPService{logger: logger}
	if dbPath == "" {
		logger.Info("GeoIP: no database configured, country lookups disabled")
		return s
	}
	if err := s.Load(dbPath); err != nil {
		logger.Warn("GeoIP: database unavailable, country lookups disabled", "path", dbPath, "error", err)
	}
	return s
}

// Load opens the database at path, replacing any previously loaded one.
func (s *GeoIPService) Load(path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	reader, err := geoip2.Open(path)
	if err != nil {
		return err
	}
	s.setReader(reader)

	meta := reader.Metadata()
	s.logger.Info("GeoIP: loaded database", "type", meta.DatabaseType, "epoch", meta.BuildEpoch)
	return nil
}

func (s *GeoIPService) setReader(reader geoReader) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reader != nil {
		s.reader.Close()
	}
	s.reader = reader
}

func (s *GeoIPService) Country(ipStr string) string {
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return "Unknown"
	}
	if ip.IsLoopback() {
		return "Localhost"
	}
	if ip.IsPrivate() {
		return "Private"
	}

	s.mu.RLock()
	reader := s.reader
	s.mu.RUnlock()
	if reader == nil {
		return "Unknown"
	}

	record, err := reader.Country(ip)
	if err != nil {
		s.logger.Error("GeoIP: lookup error", "ip", ipStr, "error", err)
		return "Unknown"
	}
	if name, ok := record.Country.Names["en"]; ok && name != "" {
		return name
	}
	if record.Country.IsoCode != "" {
		return record.Country.IsoCode
	}
	return "Unknown"
}

func (s *GeoIPService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reader == nil {
		return nil
	}
	err := s.reader.Close()
	s.reader = nil
	return err
}
