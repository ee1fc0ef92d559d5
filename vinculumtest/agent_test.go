package vinculumtest

import (
	"strings"
	"testing"
	"time"

	"github.com/arloliu/go-vinculum/bus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// command writes line and the delimiter to a.
func command(t *testing.T, a *Agent, line string) {
	t.Helper()

	for i := 0; i < len(line); i++ {
		require.NoError(t, a.WriteData(line[i]))
	}
	require.NoError(t, a.WriteData('\r'))
}

// drain returns every byte queued for the host.
func drain(t *testing.T, a *Agent) string {
	t.Helper()

	var sb strings.Builder
	for {
		c, err := a.ReadData()
		if err != nil {
			require.ErrorIs(t, err, bus.ErrNoData)
			return sb.String()
		}
		sb.WriteByte(c)
	}
}

func TestAgent_Status(t *testing.T) {
	a := NewAgent()

	st, err := a.Status()
	require.NoError(t, err)
	assert.True(t, st.CanSend())
	assert.False(t, st.CanReceive())

	a.InjectOutput([]byte("x"))
	a.SetStallTransmit(true)
	st, err = a.Status()
	require.NoError(t, err)
	assert.False(t, st.CanSend())
	assert.True(t, st.CanReceive())
	assert.Equal(t, 1, a.Pending())
}

func TestAgent_PromptAndHandshake(t *testing.T) {
	a := NewAgent()

	command(t, a, "")
	assert.Equal(t, Prompt+"\r", drain(t, a))

	command(t, a, "E")
	assert.Equal(t, "E\r", drain(t, a))

	a.GarbleEchoes(1)
	command(t, a, "E")
	assert.Equal(t, "Q\r", drain(t, a))
	command(t, a, "E")
	assert.Equal(t, "E\r", drain(t, a))

	a.SetMedia(false)
	command(t, a, "")
	assert.Equal(t, NoDisk+"\r", drain(t, a))
	command(t, a, "ipa")
	assert.Equal(t, NoDisk+"\r", drain(t, a))

	assert.Equal(t, []string{"", "E", "E", "E", "", "ipa"}, a.Commands())
}

func TestAgent_DirSizeLittleEndian(t *testing.T) {
	a := NewAgent()
	a.AddFile("data.bin", make([]byte, 0x0102), time.Now())

	command(t, a, "dir data.bin")
	assert.Equal(t, "\rDATA.BIN $02 $01 $00 $00\r"+Prompt+"\r", drain(t, a))

	command(t, a, "dir nofile.txt")
	assert.Equal(t, "\r"+CommandFailed+"\r", drain(t, a))
}

func TestAgent_DirListing(t *testing.T) {
	a := NewAgent()
	a.AddFile("/b.txt", []byte("b"), time.Now())
	a.AddFile("/sub/a.txt", []byte("a"), time.Now())

	command(t, a, "dir")
	assert.Equal(t, "\rB.TXT\rSUB DIR\r"+Prompt+"\r", drain(t, a))
}

func TestAgent_Dirt(t *testing.T) {
	a := NewAgent()
	mod := time.Date(2020, time.March, 4, 5, 6, 8, 0, time.UTC)
	a.AddFile("t.txt", nil, mod)

	date, tm, ok := a.FileTimestamp("t.txt")
	require.True(t, ok)
	assert.Equal(t, uint16(40<<9|3<<5|4), date)
	assert.Equal(t, uint16(5<<11|6<<5|4), tm)

	command(t, a, "dirt t.txt")
	lines := strings.Split(drain(t, a), "\r")
	require.Len(t, lines, 4)
	assert.Empty(t, lines[0])
	fields := strings.Fields(lines[1])
	require.Len(t, fields, 11)
	assert.Equal(t, "T.TXT", fields[0])
	// modify time then date, low byte first
	assert.Equal(t, []string{"$C4", "$28", "$64", "$50"}, fields[7:])
	assert.Equal(t, Prompt, lines[2])
}

func TestAgent_WriteThenRead(t *testing.T) {
	a := NewAgent()

	command(t, a, "opw new.txt 0x50642864")
	assert.Equal(t, Prompt+"\r", drain(t, a))
	path, ok := a.OpenFile()
	require.True(t, ok)
	assert.Equal(t, "/NEW.TXT", path)

	command(t, a, "wrf 5")
	assert.Empty(t, drain(t, a))
	for _, c := range []byte("hello") {
		require.NoError(t, a.WriteData(c))
	}
	assert.Equal(t, Prompt+"\r", drain(t, a))

	command(t, a, "opr new.txt")
	assert.Equal(t, FileOpen+"\r", drain(t, a))

	command(t, a, "clf")
	assert.Equal(t, Prompt+"\r", drain(t, a))

	data, ok := a.File("new.txt")
	require.True(t, ok)
	assert.Equal(t, []byte("hello"), data)
	date, tm, _ := a.FileTimestamp("new.txt")
	assert.Equal(t, uint16(0x5064), date)
	assert.Equal(t, uint16(0x2864), tm)

	command(t, a, "opr new.txt")
	assert.Equal(t, Prompt+"\r", drain(t, a))
	command(t, a, "sek 1")
	assert.Equal(t, Prompt+"\r", drain(t, a))
	command(t, a, "rdf 3")
	assert.Equal(t, "ell"+Prompt+"\r", drain(t, a))
	command(t, a, "rdf 2")
	assert.Equal(t, CommandFailed+"\r", drain(t, a))
	command(t, a, "sek 6")
	assert.Equal(t, CommandFailed+"\r", drain(t, a))
}

func TestAgent_WriteAppendsAndRespectsCapacity(t *testing.T) {
	a := NewAgent()
	a.AddFile("log.txt", []byte("ab"), time.Now())
	a.SetCapacity(4)

	command(t, a, "opw log.txt")
	drain(t, a)
	command(t, a, "wrf 2")
	require.NoError(t, a.WriteData('c'))
	require.NoError(t, a.WriteData('d'))
	assert.Equal(t, Prompt+"\r", drain(t, a))

	command(t, a, "wrf 1")
	require.NoError(t, a.WriteData('e'))
	assert.Equal(t, DiskFull+"\r", drain(t, a))

	data, _ := a.File("log.txt")
	assert.Equal(t, []byte("abcd"), data)
}

func TestAgent_ShortRead(t *testing.T) {
	a := NewAgent()
	a.AddFile("x", []byte("0123456789"), time.Now())
	a.SetShortRead(3)

	command(t, a, "opr x")
	drain(t, a)
	command(t, a, "rdf 8")
	assert.Equal(t, "012", drain(t, a))
}

func TestAgent_ChangeDir(t *testing.T) {
	a := NewAgent()
	a.AddDir("/one/two")

	command(t, a, "cd ..")
	assert.Equal(t, CommandFailed+"\r", drain(t, a))

	command(t, a, "cd one")
	assert.Equal(t, Prompt+"\r", drain(t, a))
	command(t, a, "cd two")
	assert.Equal(t, Prompt+"\r", drain(t, a))
	assert.Equal(t, "/ONE/TWO", a.Cwd())

	command(t, a, "cd missing")
	assert.Equal(t, CommandFailed+"\r", drain(t, a))

	command(t, a, "cd ..")
	command(t, a, "cd ..")
	assert.Equal(t, Prompt+"\r"+Prompt+"\r", drain(t, a))
	assert.Equal(t, "/", a.Cwd())
}

func TestAgent_SilentAndUnknown(t *testing.T) {
	a := NewAgent()

	command(t, a, "frob")
	assert.Equal(t, BadCommand+"\r", drain(t, a))

	a.SetSilent(true)
	command(t, a, "ipa")
	assert.Empty(t, drain(t, a))
	assert.False(t, a.ASCIIMode())
}
