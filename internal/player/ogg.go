package player

import (
	"encoding/binary"

	"github.com/gopxl/beep/v2"
	"github.com/jfreymuth/vorbis"
	"golang.org/x/xerrors"
)

const oggHeaderSize = 27

var (
	errOggPage      = xerrors.New("ogg: malformed page")
	errOggCodec     = xerrors.New("ogg: stream is not vorbis")
	errVorbisHeader = xerrors.New("vorbis: invalid identification header")
)

// oggPage holds the packets that end on one page. Granule is the sample
// count at the end of the page, -1 when no packet ends there.
type oggPage struct {
	granule int64
	packets [][]byte
}

// parseOggPages splits a whole Ogg stream into pages, joining packets that
// span page boundaries. Only the first logical stream is kept.
func parseOggPages(data []byte) ([]oggPage, error) {
	var (
		pages   []oggPage
		partial []byte
		serial  uint32
	)
	for off := 0; off < len(data); {
		if len(data)-off < oggHeaderSize || string(data[off:off+4]) != "OggS" || data[off+4] != 0 {
			return nil, xerrors.Errorf("offset %d: %w", off, errOggPage)
		}
		hdr := data[off : off+oggHeaderSize]
		granule := int64(binary.LittleEndian.Uint64(hdr[6:14]))
		pageSerial := binary.LittleEndian.Uint32(hdr[14:18])
		nseg := int(hdr[26])

		segStart := off + oggHeaderSize
		if len(data) < segStart+nseg {
			return nil, xerrors.Errorf("offset %d: %w", off, errOggPage)
		}
		segments := data[segStart : segStart+nseg]
		body := segStart + nseg
		size := 0
		for _, s := range segments {
			size += int(s)
		}
		if len(data) < body+size {
			return nil, xerrors.Errorf("offset %d: %w", off, errOggPage)
		}
		off = body + size

		if len(pages) == 0 && partial == nil {
			serial = pageSerial
		}
		if pageSerial != serial {
			continue
		}

		page := oggPage{granule: granule}
		pos := body
		for _, s := range segments {
			partial = append(partial, data[pos:pos+int(s)]...)
			pos += int(s)
			if s < 255 {
				page.packets = append(page.packets, partial)
				partial = nil
			}
		}
		if len(page.packets) == 0 {
			page.granule = -1
		}
		pages = append(pages, page)
	}
	return pages, nil
}

// oggVorbis streams a Vorbis file held in memory.
type oggVorbis struct {
	dec      vorbis.Decoder
	channels int
	pages    []oggPage
	length   int

	page, packet int // next packet to decode
	pcm          []float32
	pcmPos       int
	position     int
	err          error
}

func decodeOggVorbis(data []byte) (beep.StreamSeekCloser, beep.Format, error) {
	pages, err := parseOggPages(data)
	if err != nil {
		return nil, beep.Format{}, err
	}

	s := &oggVorbis{pages: pages}
	var rate int
	headers := 0
	for s.page < len(pages) && headers < 3 {
		p := pages[s.page]
		for s.packet < len(p.packets) && headers < 3 {
			pkt := p.packets[s.packet]
			if headers == 0 {
				if rate, err = parseVorbisIdent(pkt, &s.channels); err != nil {
					return nil, beep.Format{}, err
				}
			}
			if err := s.dec.ReadHeader(pkt); err != nil {
				return nil, beep.Format{}, xerrors.Errorf("vorbis header: %w", err)
			}
			headers++
			s.packet++
		}
		if s.packet >= len(p.packets) {
			s.page++
			s.packet = 0
		}
	}
	if headers < 3 {
		return nil, beep.Format{}, errVorbisHeader
	}

	for i := len(pages) - 1; i >= 0; i-- {
		if pages[i].granule >= 0 {
			s.length = int(pages[i].granule)
			break
		}
	}

	format := beep.Format{
		SampleRate:  beep.SampleRate(rate),
		NumChannels: s.channels,
		Precision:   2,
	}
	return s, format, nil
}

// parseVorbisIdent checks the identification header and returns the sample
// rate.
func parseVorbisIdent(pkt []byte, channels *int) (int, error) {
	if len(pkt) < 7 || pkt[0] != 0x01 || string(pkt[1:7]) != "vorbis" {
		return 0, errOggCodec
	}
	if len(pkt) < 16 || binary.LittleEndian.Uint32(pkt[7:11]) != 0 || pkt[11] == 0 {
		return 0, errVorbisHeader
	}
	*channels = int(pkt[11])
	return int(binary.LittleEndian.Uint32(pkt[12:16])), nil
}

// next decodes the following packet into the PCM buffer. It returns false at
// the end of the stream.
func (s *oggVorbis) next() bool {
	for s.page < len(s.pages) {
		p := s.pages[s.page]
		if s.packet >= len(p.packets) {
			s.page++
			s.packet = 0
			continue
		}
		pkt := p.packets[s.packet]
		s.packet++
		pcm, err := s.dec.Decode(pkt)
		if err != nil {
			// corrupt packets are skipped
			continue
		}
		s.pcm, s.pcmPos = pcm, 0
		return true
	}
	return false
}

func (s *oggVorbis) Stream(samples [][2]float64) (n int, ok bool) {
	if s.err != nil {
		return 0, false
	}
	for n < len(samples) {
		if s.pcmPos >= len(s.pcm) {
			if !s.next() {
				return n, n > 0
			}
			continue
		}
		l := float64(s.pcm[s.pcmPos])
		r := l
		if s.channels > 1 {
			r = float64(s.pcm[s.pcmPos+1])
		}
		samples[n] = [2]float64{l, r}
		s.pcmPos += s.channels
		s.position++
		n++
	}
	return n, true
}

func (s *oggVorbis) Err() error { return s.err }

func (s *oggVorbis) Len() int { return s.length }

func (s *oggVorbis) Position() int { return s.position }

// Seek restarts decoding at the page preceding p and discards samples up to
// p.
func (s *oggVorbis) Seek(p int) error {
	p = min(max(p, 0), s.length)

	start, base := s.firstAudioPage(), 0
	for i := start; i < len(s.pages); i++ {
		g := s.pages[i].granule
		if g < 0 {
			continue
		}
		if int(g) >= p {
			break
		}
		start, base = i+1, int(g)
	}

	s.dec.Clear()
	s.page, s.packet = start, 0
	s.pcm, s.pcmPos = nil, 0
	s.position = base
	s.err = nil

	for s.position < p {
		if s.pcmPos >= len(s.pcm) {
			if !s.next() {
				break
			}
			continue
		}
		skip := min((len(s.pcm)-s.pcmPos)/s.channels, p-s.position)
		s.pcmPos += skip * s.channels
		s.position += skip
	}
	return nil
}

// firstAudioPage is the first page after the three header packets. Vorbis
// requires the setup header to end its page.
func (s *oggVorbis) firstAudioPage() int {
	headers := 0
	for i, p := range s.pages {
		headers += len(p.packets)
		if headers >= 3 {
			return i + 1
		}
	}
	return len(s.pages)
}

func (s *oggVorbis) Close() error { return nil }
