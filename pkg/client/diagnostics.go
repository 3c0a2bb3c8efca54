package client

import (
	"context"
	"time"

	"github.com/pbnjay/memory"
	"github.com/prometheus/procfs"
)

// runDiagnostics logs process and system memory figures at the configured
// cadence. Debug-level only; useful when a long session is suspected of
// leaking views or goroutines.
func (c *TableClient) runDiagnostics(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	fs, err := procfs.NewDefaultFS()
	if err != nil {
		c.log.Debugf("proc diagnostics unavailable: %v", err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		var rss uint64
		if proc, err := fs.Self(); err == nil {
			if stat, err := proc.Stat(); err == nil {
				rss = uint64(stat.ResidentMemory())
			}
		}
		c.log.Debugf("diag: conn=%s rss=%dMiB sysfree=%dMiB",
			c.transport.State(), rss/1024/1024, memory.FreeMemory()/1024/1024)
	}
}
