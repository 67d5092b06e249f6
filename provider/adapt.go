package provider

import "context"

// Adapt exposes a backend RequestResponse[BI, BO] as a RequestResponse[I, O].
// mapIn builds the backend request from the domain input; mapOut turns the
// backend response into the domain output. An empty name keeps the inner
// provider's name.
func Adapt[I, O, BI, BO any](
	inner RequestResponse[BI, BO],
	name string,
	mapIn func(ctx context.Context, input I) (BI, error),
	mapOut func(output BO) (O, error),
) RequestResponse[I, O] {
	if name == "" {
		name = inner.Name()
	}
	return &adapted[I, O, BI, BO]{inner: inner, name: name, mapIn: mapIn, mapOut: mapOut}
}

type adapted[I, O, BI, BO any] struct {
	inner  RequestResponse[BI, BO]
	name   string
	mapIn  func(ctx context.Context, input I) (BI, error)
	mapOut func(output BO) (O, error)
}

func (a *adapted[I, O, BI, BO]) Name() string { return a.name }

func (a *adapted[I, O, BI, BO]) IsAvailable(ctx context.Context) bool {
	return a.inner.IsAvailable(ctx)
}

func (a *adapted[I, O, BI, BO]) Execute(ctx context.Context, input I) (O, error) {
	var zero O
	req, err := a.mapIn(ctx, input)
	if err != nil {
		return zero, err
	}
	resp, err := a.inner.Execute(ctx, req)
	if err != nil {
		return zero, err
	}
	return a.mapOut(resp)
}
