package donation

// Notifier is told about committed mutations so subscribers can refetch listings
type Notifier interface {
	Notify(entity, action string, id int64, extra map[string]interface{})
}

type nopNotifier struct{}

func (nopNotifier) Notify(string, string, int64, map[string]interface{}) {}

func notifierOrNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}
