package topics

const (
	// Notificações manuais de surebet (disparadas pelo operador)
	SurebetNotify    = "surebet_notify"
	SurebetNotifyDLQ = "surebet_notify_dlq"
)
