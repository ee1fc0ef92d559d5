package vinculumtest

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// execute runs one command line. a.mu is held.
func (a *Agent) execute(line string) {
	verb, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	if verb == "" {
		if a.media {
			a.reply(Prompt)
		} else {
			a.reply(NoDisk)
		}
		return
	}

	if strings.EqualFold(verb, "E") && arg == "" {
		a.handshake(verb)
		return
	}

	if !a.media {
		a.reply(NoDisk)
		return
	}

	switch strings.ToLower(verb) {
	case "ipa":
		a.ipa = true
		a.reply(Prompt)
	case "clf":
		a.open = nil
		a.reply(Prompt)
	case "dir":
		a.dir(arg)
	case "dirt":
		a.dirt(arg)
	case "opr":
		a.openRead(arg)
	case "opw":
		a.openWrite(arg)
	case "sek":
		a.seek(arg)
	case "rdf":
		a.readFile(arg)
	case "wrf":
		a.writeFile(arg)
	case "cd":
		a.changeDir(arg)
	default:
		a.reply(BadCommand)
	}
}

func (a *Agent) handshake(probe string) {
	switch {
	case a.badEchoes > 0:
		a.badEchoes--
		a.reply("Q")
	case a.echo != "":
		a.reply(a.echo)
	default:
		a.reply(probe)
	}
}

func (a *Agent) dir(name string) {
	a.reply("")

	if name == "" {
		a.list()
		a.reply(Prompt)
		return
	}

	e, ok := a.files.Load(joinPath(a.cwd, name))
	if !ok {
		a.reply(CommandFailed)
		return
	}

	size := len(e.data)
	a.reply(fmt.Sprintf("%s %s", strings.ToUpper(name), hexPairs(
		byte(size), byte(size>>8), byte(size>>16), byte(size>>24),
	)))
	a.reply(Prompt)
}

func (a *Agent) list() {
	prefix := a.cwd
	if prefix != rootDir {
		prefix += "/"
	}

	var names []string
	a.dirs.Range(func(p string, _ struct{}) bool {
		if rest, ok := strings.CutPrefix(p, prefix); ok && rest != "" && !strings.Contains(rest, "/") {
			names = append(names, rest+" DIR")
		}
		return true
	})
	a.files.Range(func(p string, _ *entry) bool {
		if rest, ok := strings.CutPrefix(p, prefix); ok && !strings.Contains(rest, "/") {
			names = append(names, rest)
		}
		return true
	})
	sort.Strings(names)

	for _, n := range names {
		a.reply(n)
	}
}

func (a *Agent) dirt(name string) {
	a.reply("")

	e, ok := a.files.Load(joinPath(a.cwd, name))
	if !ok {
		a.reply(CommandFailed)
		return
	}

	// access date, create time+date, modify time+date
	a.reply(fmt.Sprintf("%s %s", strings.ToUpper(name), hexPairs(
		byte(e.modDate), byte(e.modDate>>8),
		byte(e.modTime), byte(e.modTime>>8), byte(e.modDate), byte(e.modDate>>8),
		byte(e.modTime), byte(e.modTime>>8), byte(e.modDate), byte(e.modDate>>8),
	)))
	a.reply(Prompt)
}

func (a *Agent) openRead(name string) {
	if a.open != nil {
		a.reply(FileOpen)
		return
	}

	path := joinPath(a.cwd, name)
	if _, ok := a.files.Load(path); !ok {
		a.reply(CommandFailed)
		return
	}

	a.open = &openFile{path: path}
	a.reply(Prompt)
}

func (a *Agent) openWrite(arg string) {
	if a.open != nil {
		a.reply(FileOpen)
		return
	}

	name, token, _ := strings.Cut(arg, " ")
	if name == "" {
		a.reply(CommandFailed)
		return
	}

	date, tm := a.defaultDate, a.defaultTime
	if token = strings.TrimSpace(token); token != "" {
		v, err := strconv.ParseUint(token, 0, 32)
		if err != nil {
			a.reply(BadCommand)
			return
		}
		date, tm = uint16(v>>16), uint16(v)
	}

	path := joinPath(a.cwd, name)
	e, ok := a.files.Load(path)
	if !ok {
		e = &entry{}
	}
	a.files.Store(path, &entry{data: e.data, modDate: date, modTime: tm})

	// opw appends
	a.open = &openFile{path: path, write: true, pos: len(e.data)}
	a.reply(Prompt)
}

func (a *Agent) seek(arg string) {
	n, err := strconv.Atoi(arg)
	if err != nil || a.open == nil {
		a.reply(CommandFailed)
		return
	}

	e, _ := a.files.Load(a.open.path)
	if n < 0 || n > len(e.data) {
		a.reply(CommandFailed)
		return
	}

	a.open.pos = n
	a.reply(Prompt)
}

func (a *Agent) readFile(arg string) {
	n, err := strconv.Atoi(arg)
	if err != nil || n <= 0 || a.open == nil {
		a.reply(CommandFailed)
		return
	}

	e, _ := a.files.Load(a.open.path)
	if a.open.pos+n > len(e.data) {
		a.reply(CommandFailed)
		return
	}

	data := e.data[a.open.pos : a.open.pos+n]
	if a.shortRead > 0 {
		data = data[:min(a.shortRead, len(data))]
		a.shortRead = 0
		for _, c := range data {
			a.out.Enqueue(c)
		}
		return
	}

	for _, c := range data {
		a.out.Enqueue(c)
	}
	a.open.pos += n
	a.reply(Prompt)
}

func (a *Agent) writeFile(arg string) {
	n, err := strconv.Atoi(arg)
	if err != nil || n <= 0 || a.open == nil || !a.open.write {
		a.reply(CommandFailed)
		return
	}

	a.rawLeft = n
	a.rawBuf = a.rawBuf[:0]
}

// finishWrite stores the completed wrf payload. a.mu is held.
func (a *Agent) finishWrite() {
	e, _ := a.files.Load(a.open.path)

	end := a.open.pos + len(a.rawBuf)
	grow := max(0, end-len(e.data))
	if a.capacity >= 0 && a.used()+grow > a.capacity {
		a.reply(DiskFull)
		return
	}

	data := make([]byte, max(end, len(e.data)))
	copy(data, e.data)
	copy(data[a.open.pos:], a.rawBuf)

	a.files.Store(a.open.path, &entry{data: data, modDate: e.modDate, modTime: e.modTime})
	a.open.pos = end
	a.reply(Prompt)
}

func (a *Agent) used() int {
	total := 0
	a.files.Range(func(_ string, e *entry) bool {
		total += len(e.data)
		return true
	})

	return total
}

func (a *Agent) changeDir(name string) {
	switch name {
	case "":
		a.reply(CommandFailed)
	case "..":
		if a.cwd == rootDir {
			a.reply(CommandFailed)
			return
		}
		i := strings.LastIndexByte(a.cwd, '/')
		if i == 0 {
			a.cwd = rootDir
		} else {
			a.cwd = a.cwd[:i]
		}
		a.reply(Prompt)
	default:
		path := joinPath(a.cwd, name)
		if _, ok := a.dirs.Load(path); !ok {
			a.reply(CommandFailed)
			return
		}
		a.cwd = path
		a.reply(Prompt)
	}
}

// reply queues one response line.
func (a *Agent) reply(line string) {
	for i := 0; i < len(line); i++ {
		a.out.Enqueue(line[i])
	}
	a.out.Enqueue('\r')
}

// hexPairs renders bytes the way the monitor prints them in ASCII mode.
func hexPairs(b ...byte) string {
	parts := make([]string, len(b))
	for i, c := range b {
		parts[i] = fmt.Sprintf("$%02X", c)
	}

	return strings.Join(parts, " ")
}
