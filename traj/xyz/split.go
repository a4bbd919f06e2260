package xyz

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
)

//Splitting a trajectory into chunks for distributed coupling runs. The
//frames are copied verbatim, line by line, so no precision is lost.

// Split cuts the XYZ trajectory in name into chunks of up to chunk frames,
// written under dir as chunk_0.xyz, chunk_1.xyz and so on (keeping the
// compression suffix of the input, if any). Consecutive chunks overlap by
// 2 frames, so running the 3-point couplings on every chunk covers each
// interior frame of the whole trajectory exactly once. It returns the
// chunk filenames and, for each chunk, the global index of its first frame
// (the From of a CouplingDriver run on that chunk). chunk must be at least
// 3, and the trajectory must have at least 3 frames.
func Split(name, dir string, chunk int) ([]string, []int, error) {
	if chunk < 3 {
		return nil, nil, Error{fmt.Sprintf("%s: chunk size %d is smaller than 3", WrongFormat, chunk), name, []string{"Split"}, true}
	}
	frames, err := rawFrames(name)
	if err != nil {
		return nil, nil, errDecorate(err, "Split")
	}
	if len(frames) < 3 {
		return nil, nil, Error{fmt.Sprintf("%s: only %d frames", WrongFormat, len(frames)), name, []string{"Split"}, true}
	}
	suffix := ".xyz"
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz", ".zst", ".zstd":
		suffix += strings.ToLower(filepath.Ext(name))
	}
	var files []string
	var froms []int
	for k, s := 0, 0; ; k++ {
		end := s + chunk
		if end > len(frames) {
			end = len(frames)
		}
		out := filepath.Join(dir, fmt.Sprintf("chunk_%d%s", k, suffix))
		if err := writeRaw(out, frames[s:end]); err != nil {
			return nil, nil, errDecorate(err, "Split")
		}
		files = append(files, out)
		froms = append(froms, s)
		if end == len(frames) {
			break
		}
		//a 2-frame overlap keeps the interior frames contiguous. The
		//leftover after the last full chunk is always 3 frames or more.
		s = end - 2
	}
	return files, froms, nil
}

//rawFrames reads every frame of an XYZ trajectory as its verbatim lines.
func rawFrames(name string) ([][]string, error) {
	f, z, h, err := openReader(name)
	if err != nil {
		return nil, errDecorate(err, "rawFrames")
	}
	defer func() {
		if z != nil {
			z.Close()
		}
		f.Close()
	}()
	var frames [][]string
	for {
		lines, err := rawFrame(h)
		if err == io.EOF {
			return frames, nil
		}
		if err != nil {
			return nil, errDecorate(err, "rawFrames")
		}
		frames = append(frames, lines)
	}
}

//rawFrame reads the lines of one frame without parsing the coordinates.
func rawFrame(h *bufio.Reader) ([]string, error) {
	line, err := h.ReadString('\n')
	if err == io.EOF && strings.TrimSpace(line) == "" {
		return nil, io.EOF
	}
	if err != nil && err != io.EOF {
		return nil, Error{fmt.Sprintf("%s: %v", ReadError, err), "", []string{"rawFrame"}, true}
	}
	natoms, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || natoms <= 0 {
		return nil, Error{fmt.Sprintf("%s: atom count %q", WrongFormat, strings.TrimSpace(line)), "", []string{"rawFrame"}, true}
	}
	lines := make([]string, 0, natoms+2)
	lines = append(lines, strings.TrimRight(line, "\n"))
	for i := 0; i < natoms+1; i++ { //the comment line plus one line per atom
		line, err := h.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, Error{fmt.Sprintf("%s: %v", ReadError, err), "", []string{"rawFrame"}, true}
		}
		if strings.TrimSpace(line) == "" && i > 0 {
			return nil, Error{fmt.Sprintf("%s: frame truncated", WrongFormat), "", []string{"rawFrame"}, true}
		}
		lines = append(lines, strings.TrimRight(line, "\n"))
	}
	return lines, nil
}

//writeRaw writes the given frames, verbatim, to a new trajectory file.
func writeRaw(name string, frames [][]string) error {
	f, z, w, err := openWriter(name)
	if err != nil {
		return errDecorate(err, "writeRaw")
	}
	for _, frame := range frames {
		for _, line := range frame {
			fmt.Fprintln(w, line)
		}
	}
	if err := w.Flush(); err != nil {
		return Error{fmt.Sprintf("%s: %v", WriteError, err), name, []string{"writeRaw"}, true}
	}
	if z != nil {
		z.Close()
	}
	f.Close()
	return nil
}
