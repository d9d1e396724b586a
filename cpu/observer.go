package cpu

// StepEvent describes an instruction about to execute.
type StepEvent struct {
	Cpu         *Cpu        // The stepping CPU. Observers must not modify it.
	Pc          int         // Address of the instruction.
	Word        uint32      // Raw instruction word.
	Instruction Instruction // Decoded instruction.
}

// Observer is notified at the start of every step, after decode and
// before any side effect.
type Observer interface {
	CpuStep(event StepEvent)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(event StepEvent)

func (fn ObserverFunc) CpuStep(event StepEvent) {
	fn(event)
}

// Subscription identifies a subscribed observer.
type Subscription int

type subscriber struct {
	id       Subscription
	observer Observer
}

// Subscribe adds an observer. Observers are called in subscription order.
func (cpu *Cpu) Subscribe(observer Observer) (sub Subscription) {
	cpu.nextSubscription++
	sub = cpu.nextSubscription
	cpu.observers = append(cpu.observers, subscriber{id: sub, observer: observer})
	return
}

// Unsubscribe removes an observer. Unknown subscriptions are ignored.
func (cpu *Cpu) Unsubscribe(sub Subscription) {
	for n, s := range cpu.observers {
		if s.id == sub {
			cpu.observers = append(cpu.observers[:n:n], cpu.observers[n+1:]...)
			return
		}
	}
}

func (cpu *Cpu) notify(event StepEvent) {
	for _, s := range cpu.observers {
		s.observer.CpuStep(event)
	}
}
