package aggregate

import (
	"sort"

	"github.com/evidence-toolkit/evitool/internal/schema"
)

const topParticipantsLimit = 5

// buildPowerDynamics aggregates per-participant message_count and mean
// deference_score, unions their dominant_topics, and ranks participants
// by connection count — the number of distinct co-participants they
// shared a thread with (spec §4.5).
func buildPowerDynamics(analyses []*schema.UnifiedAnalysis) *schema.PowerDynamics {
	type accum struct {
		messageCount   int
		deferenceSum   float64
		deferenceCount int
		topics         map[string]bool
	}
	participants := map[string]*accum{}
	connections := map[string]map[string]bool{}
	anyEmail := false

	for _, ua := range analyses {
		if ua.EmailAnalysis == nil {
			continue
		}
		anyEmail = true

		var addrs []string
		for _, p := range ua.EmailAnalysis.Participants {
			addrs = append(addrs, p.EmailAddress)
			a, ok := participants[p.EmailAddress]
			if !ok {
				a = &accum{topics: map[string]bool{}}
				participants[p.EmailAddress] = a
			}
			a.messageCount += p.MessageCount
			a.deferenceSum += p.DeferenceScore
			a.deferenceCount++
			for _, t := range p.DominantTopics {
				a.topics[t] = true
			}
			if connections[p.EmailAddress] == nil {
				connections[p.EmailAddress] = map[string]bool{}
			}
		}
		for _, a := range addrs {
			for _, b := range addrs {
				if a != b {
					connections[a][b] = true
				}
			}
		}
	}
	if !anyEmail {
		return nil
	}

	var profiles []schema.ParticipantPowerProfile
	for addr, a := range participants {
		mean := 0.0
		if a.deferenceCount > 0 {
			mean = schema.Round4(a.deferenceSum / float64(a.deferenceCount))
		}
		profiles = append(profiles, schema.ParticipantPowerProfile{
			EmailAddress:       addr,
			MessageCount:       a.messageCount,
			MeanDeferenceScore: mean,
			DominantTopics:     sortedKeys(a.topics),
		})
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].EmailAddress < profiles[j].EmailAddress })

	topParticipants := rankByConnectionCount(connections, topParticipantsLimit)

	return &schema.PowerDynamics{
		Participants:    profiles,
		TopParticipants: topParticipants,
	}
}

func rankByConnectionCount(connections map[string]map[string]bool, limit int) []string {
	type degree struct {
		addr  string
		count int
	}
	var degrees []degree
	for addr, peers := range connections {
		degrees = append(degrees, degree{addr: addr, count: len(peers)})
	}
	sort.Slice(degrees, func(i, j int) bool {
		if degrees[i].count != degrees[j].count {
			return degrees[i].count > degrees[j].count
		}
		return degrees[i].addr < degrees[j].addr
	})
	if len(degrees) > limit {
		degrees = degrees[:limit]
	}
	out := make([]string, 0, len(degrees))
	for _, d := range degrees {
		out = append(out, d.addr)
	}
	return out
}

func sortedKeys(m map[string]bool) []string {
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
