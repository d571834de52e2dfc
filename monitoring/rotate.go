// Licensed to the lpel project under one or more contributor
// license agreements. See the NOTICE file distributed with
// this work for additional information regarding copyright
// ownership. The lpel project licenses this file to you under
// the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package monitoring

import (
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
)

// rotatingFile is a monitoring log sink that gzip-rotates itself once it
// crosses a size threshold. Unlike the source (which never rotates and
// relies on the host to keep the process lifetime short), a long-running
// worker can otherwise grow its log file without bound.
type rotatingFile struct {
	path      string
	maxBytes  int64
	f         *os.File
	written   int64
	generation int
}

// openRotatingFile opens (creating or truncating) path for monitoring
// output. maxBytes <= 0 disables rotation.
func openRotatingFile(path string, maxBytes int64) (*rotatingFile, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open monitoring log %s: %w", path, err)
	}
	return &rotatingFile{path: path, maxBytes: maxBytes, f: f}, nil
}

func (r *rotatingFile) Write(p []byte) (int, error) {
	n, err := r.f.Write(p)
	r.written += int64(n)
	if err == nil && r.maxBytes > 0 && r.written >= r.maxBytes {
		if rerr := r.rotate(); rerr != nil {
			// Monitoring never raises errors back to the scheduler (§7):
			// a rotation failure just means this worker's log keeps
			// growing past its target size.
			return n, nil
		}
	}
	return n, err
}

func (r *rotatingFile) rotate() error {
	if err := r.f.Close(); err != nil {
		return err
	}
	r.generation++
	archived := fmt.Sprintf("%s.%d.gz", r.path, r.generation)
	if err := gzipFile(r.path, archived); err != nil {
		if f, oerr := os.OpenFile(r.path, os.O_WRONLY|os.O_APPEND, 0o644); oerr == nil {
			r.f = f
		}
		return err
	}
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	r.f = f
	r.written = 0
	return nil
}

func gzipFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	gw := gzip.NewWriter(out)
	if _, err := io.Copy(gw, in); err != nil {
		gw.Close()
		return err
	}
	return gw.Close()
}

func (r *rotatingFile) Close() error {
	return r.f.Close()
}
