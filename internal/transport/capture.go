package transport

import (
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"github.com/banshee-data/qgclink/internal/monitoring"
)

const captureSnapLen = 65535

// captureLogInterval bounds how often a failing capture file is reported.
const captureLogInterval = time.Second

// Capture tees every frame into a pcap file before forwarding it to the
// wrapped transport. Frames are stored as IPv4/UDP datagrams addressed to
// the MAVLink ground station port, so Wireshark's MAVLink dissector can
// decode the capture directly.
type Capture struct {
	next Transport

	mu      sync.Mutex
	out     io.WriteCloser
	w       *pcapgo.Writer
	now     func() time.Time
	src     net.IP
	dst     net.IP
	srcPort layers.UDPPort
	dstPort layers.UDPPort

	failures atomic.Uint64
	lastLog  time.Time // guarded by mu
}

// NewCaptureFile creates path and wraps next with a Capture writing to it.
func NewCaptureFile(path string, next Transport) (*Capture, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create capture file: %w", err)
	}
	c, err := NewCapture(f, next)
	if err != nil {
		f.Close()
		return nil, err
	}
	return c, nil
}

// NewCapture writes the pcap file header to out and returns the tee.
func NewCapture(out io.WriteCloser, next Transport) (*Capture, error) {
	w := pcapgo.NewWriter(out)
	if err := w.WriteFileHeader(captureSnapLen, layers.LinkTypeRaw); err != nil {
		return nil, fmt.Errorf("failed to write pcap header: %w", err)
	}
	return &Capture{
		next:    next,
		out:     out,
		w:       w,
		now:     time.Now,
		src:     net.IPv4(127, 0, 0, 1),
		dst:     net.IPv4(127, 0, 0, 1),
		srcPort: 14551,
		dstPort: 14550,
	}, nil
}

// Send records the frame and then forwards it. Only the forward result is
// returned: a frame that reached the wrapped transport was sent, whether or
// not it made it into the capture file. Capture failures are counted and
// logged at most once per captureLogInterval.
func (c *Capture) Send(frame []byte) error {
	if err := c.record(frame); err != nil {
		c.captureFailed(err)
	}
	return c.next.Send(frame)
}

// CaptureFailures reports how many frames could not be written to the file.
func (c *Capture) CaptureFailures() uint64 { return c.failures.Load() }

func (c *Capture) captureFailed(err error) {
	n := c.failures.Add(1)
	c.mu.Lock()
	now := c.now()
	due := c.lastLog.IsZero() || now.Sub(c.lastLog) >= captureLogInterval
	if due {
		c.lastLog = now
	}
	c.mu.Unlock()
	if due {
		monitoring.Logf("capture write failed (%d total): %v", n, err)
	}
}

func (c *Capture) record(frame []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.w == nil {
		return nil
	}

	ip := &layers.IPv4{
		Version:  4,
		TTL:      64,
		Protocol: layers.IPProtocolUDP,
		SrcIP:    c.src,
		DstIP:    c.dst,
	}
	udp := &layers.UDP{SrcPort: c.srcPort, DstPort: c.dstPort}
	if err := udp.SetNetworkLayerForChecksum(ip); err != nil {
		return err
	}
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, ip, udp, gopacket.Payload(frame)); err != nil {
		return fmt.Errorf("failed to serialise capture packet: %w", err)
	}
	data := buf.Bytes()
	ci := gopacket.CaptureInfo{
		Timestamp:     c.now(),
		CaptureLength: len(data),
		Length:        len(data),
	}
	return c.w.WritePacket(ci, data)
}

// Close closes the capture file and the wrapped transport.
func (c *Capture) Close() error {
	c.mu.Lock()
	var capErr error
	if c.w != nil {
		capErr = c.out.Close()
		c.w = nil
	}
	c.mu.Unlock()

	if err := c.next.Close(); err != nil {
		return err
	}
	return capErr
}
