package analyzer

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/mail"
	"os"
	"path/filepath"
	"sort"
	"strings"

	evierrors "github.com/evidence-toolkit/evitool/internal/errors"
	"github.com/evidence-toolkit/evitool/internal/llm"
	"github.com/evidence-toolkit/evitool/internal/prompts"
	"github.com/evidence-toolkit/evitool/internal/schema"
)

// parsedMessage is one normalized email, independent of its source
// container (.eml or .mbox).
type parsedMessage struct {
	from       string
	to         []string
	cc         []string
	subject    string
	body       string
	date       schema.Absent // present only when the Date header parsed
	dateValue  int64         // unix seconds, used for sorting; 0 if absent
	messageID  string
	inReplyTo  string
	references []string
}

// analyzeEmail parses the evidence as an email thread (.eml single
// message, or .mbox multi-message), reconstructs thread order, and calls
// the structured LLM. .msg (Outlook's proprietary binary format) has no
// implementation available and reports DependencyMissing rather than
// crashing (spec §4.3's email error-conditions table).
func analyzeEmail(ctx context.Context, d Deps, hash schema.SHA256Hex, path string, meta schema.FileMetadata, caseIDs []string, caseType string) (*schema.UnifiedAnalysis, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".msg" {
		return nil, evierrors.DependencyMissingErr("no .msg parser available; convert to .eml first")
	}

	data, err := readFileBytes(path)
	if err != nil {
		return nil, err
	}

	var msgs []parsedMessage
	if ext == ".mbox" {
		msgs, err = parseMbox(data)
	} else {
		var m parsedMessage
		m, err = parseEML(data)
		msgs = []parsedMessage{m}
	}
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, evierrors.New(evierrors.Ingest, evierrors.SeverityFatal, "email contains no parseable messages")
	}

	sortThread(msgs)

	p, err := d.Prompts.Get(prompts.DomainEmail, caseType)
	if err != nil {
		return nil, err
	}
	prompt, err := prompts.FullPrompt(p, map[string]interface{}{
		"CaseType":     caseType,
		"MessageCount": len(msgs),
		"ThreadText":   renderThread(msgs),
	})
	if err != nil {
		return nil, err
	}

	res, err := d.LLM.Complete(ctx, llm.Request{
		Prompt:      prompt,
		SchemaName:  "email_thread_analysis",
		Schema:      emailThreadAnalysisSchema(),
		Temperature: 0,
	})
	if err != nil {
		return nil, err
	}

	var ea schema.EmailThreadAnalysis
	if err := llm.ParseInto(res, &ea); err != nil {
		return nil, err
	}
	ea.EmailCount = len(msgs)

	ua := baseUnifiedAnalysis(hash, meta, schema.EvidenceEmail, caseIDs)
	ua.EmailAnalysis = &ea
	ua.EmailHeaders = map[string]interface{}{
		"message_count": len(msgs),
		"subjects":      subjects(msgs),
	}
	for _, m := range msgs {
		if m.date.Present {
			ua.EmailHeaders["date"] = m.date.Value
			break
		}
	}
	return &ua, nil
}

func readFileBytes(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, evierrors.IngestErr(err, "read email file")
	}
	return data, nil
}

// parseEML parses a single RFC 5322 message.
func parseEML(data []byte) (parsedMessage, error) {
	m, err := mail.ReadMessage(bytes.NewReader(data))
	if err != nil {
		return parsedMessage{}, evierrors.IngestErr(err, "parse eml message")
	}
	return messageFromHeader(m.Header, m.Body)
}

// parseMbox splits an mbox file on its "From " envelope separator lines
// and parses each resulting chunk as a message.
func parseMbox(data []byte) ([]parsedMessage, error) {
	var chunks [][]byte
	var current bytes.Buffer
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "From ") && current.Len() > 0 {
			chunks = append(chunks, append([]byte(nil), current.Bytes()...))
			current.Reset()
			continue
		}
		if strings.HasPrefix(line, "From ") {
			continue
		}
		current.WriteString(line)
		current.WriteByte('\n')
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.Bytes())
	}
	if err := scanner.Err(); err != nil {
		return nil, evierrors.IngestErr(err, "scan mbox file")
	}

	msgs := make([]parsedMessage, 0, len(chunks))
	for _, c := range chunks {
		m, err := mail.ReadMessage(bytes.NewReader(c))
		if err != nil {
			continue
		}
		pm, err := messageFromHeader(m.Header, m.Body)
		if err != nil {
			continue
		}
		msgs = append(msgs, pm)
	}
	return msgs, nil
}

func messageFromHeader(h mail.Header, body io.Reader) (parsedMessage, error) {
	pm := parsedMessage{
		subject:    h.Get("Subject"),
		messageID:  strings.Trim(h.Get("Message-Id"), "<>"),
		inReplyTo:  strings.Trim(h.Get("In-Reply-To"), "<>"),
		references: strings.Fields(h.Get("References")),
	}
	if addr, err := h.AddressList("From"); err == nil && len(addr) > 0 {
		pm.from = addr[0].Address
	}
	if addrs, err := h.AddressList("To"); err == nil {
		for _, a := range addrs {
			pm.to = append(pm.to, a.Address)
		}
	}
	if addrs, err := h.AddressList("Cc"); err == nil {
		for _, a := range addrs {
			pm.cc = append(pm.cc, a.Address)
		}
	}
	if t, err := h.Date(); err == nil {
		pm.date = schema.Some(t.Format("2006-01-02T15:04:05Z07:00"))
		pm.dateValue = t.Unix()
	}

	bodyBytes, _ := io.ReadAll(io.LimitReader(body, 1<<20))
	pm.body = string(bodyBytes)
	return pm, nil
}

// sortThread orders messages by parsed date ascending; messages with an
// equal or missing date are tie-broken by reference-chain depth (a reply
// carries more References entries than its parent), then by position of
// first appearance for stability.
func sortThread(msgs []parsedMessage) {
	type indexed struct {
		msg parsedMessage
		idx int
	}
	tmp := make([]indexed, len(msgs))
	for i, m := range msgs {
		tmp[i] = indexed{m, i}
	}
	sort.SliceStable(tmp, func(i, j int) bool {
		if tmp[i].msg.dateValue != tmp[j].msg.dateValue {
			return tmp[i].msg.dateValue < tmp[j].msg.dateValue
		}
		if len(tmp[i].msg.references) != len(tmp[j].msg.references) {
			return len(tmp[i].msg.references) < len(tmp[j].msg.references)
		}
		return tmp[i].idx < tmp[j].idx
	})
	for i, t := range tmp {
		msgs[i] = t.msg
	}
}

func renderThread(msgs []parsedMessage) string {
	var sb strings.Builder
	for i, m := range msgs {
		fmt.Fprintf(&sb, "--- Message %d ---\nFrom: %s\nTo: %s\nDate: %s\nSubject: %s\n\n%s\n\n",
			i, m.from, strings.Join(m.to, ", "), m.date.String(), m.subject, m.body)
	}
	return sb.String()
}

func subjects(msgs []parsedMessage) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.subject)
	}
	return out
}
