package alert

import (
	"NetSentra/internal/model"

	"github.com/google/uuid"
)

// New builds an immutable Alert from a positive classification. The evidence
// snapshot must come from the same window the classification was made in.
func New(rec *model.PacketRecord, cls *model.Classification, ev model.Evidence) *model.Alert {
	a := &model.Alert{
		ID:        uuid.NewString(),
		Timestamp: rec.Timestamp,
		Threat:    cls.Threat,
		Severity:  cls.Severity,
		Protocol:  rec.Protocol,
		Evidence:  ev,
		Status:    model.StatusNew,
	}
	if rec.SrcIP != nil {
		a.SrcIP = rec.SrcIP.String()
	}
	if rec.DstIP != nil {
		a.DstIP = rec.DstIP.String()
	}
	return a
}
