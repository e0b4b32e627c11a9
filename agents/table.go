package agents

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/zeu5/gridchase-rl/policies"
)

// store is the table an agent owns together with where it lives on disk.
// An empty path keeps the table in memory only.
type store struct {
	table  *policies.QTable
	path   string
	format policies.Format
	decode policies.StateDecoder
	loaded bool
}

func (s *store) load(log *logrus.Entry) error {
	if s.loaded || s.path == "" {
		s.loaded = true
		return nil
	}
	stats, err := policies.Load(s.path, s.table, s.format, s.decode)
	if err != nil {
		return fmt.Errorf("loading table: %w", err)
	}
	s.loaded = true
	for _, skipped := range stats.Skipped {
		log.WithFields(logrus.Fields{
			"path": s.path,
			"line": skipped.Line,
		}).Warn("skipped table line: " + skipped.Reason)
	}
	if stats.Missing {
		log.WithField("path", s.path).Info("no table file, starting empty")
		return nil
	}
	log.WithFields(logrus.Fields{
		"path":    s.path,
		"entries": stats.Loaded,
		"skipped": len(stats.Skipped),
	}).Info("loaded table")
	return nil
}

func (s *store) save(log *logrus.Entry) error {
	if s.path == "" {
		return nil
	}
	if err := policies.Save(s.path, s.table, s.format); err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"path":    s.path,
		"entries": s.table.Len(),
	}).Info("saved table")
	return nil
}
