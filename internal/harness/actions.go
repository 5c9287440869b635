package harness

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/storesync/internal/dispatch"
	"github.com/roach88/storesync/internal/model"
	"github.com/roach88/storesync/internal/remote"
	"github.com/roach88/storesync/internal/stores"
)

// runner decodes an action from JSON arguments, dispatches it and waits
// for its completion.
type runner func(ctx context.Context, d *dispatch.Dispatcher, args []byte) (any, error)

func bind[A dispatch.Action, T any](attach func(*A, dispatch.Completion[T])) runner {
	return func(ctx context.Context, d *dispatch.Dispatcher, args []byte) (any, error) {
		var a A
		if err := json.Unmarshal(args, &a); err != nil {
			return nil, fmt.Errorf("decode args: %w", err)
		}
		done := make(chan dispatch.Result[T], 1)
		attach(&a, func(r dispatch.Result[T]) { done <- r })
		if err := d.Dispatch(a); err != nil {
			return nil, err
		}
		select {
		case r := <-done:
			return r.Value, r.Err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

var actions = map[string]runner{
	"synchronize_orders": bind(func(a *stores.SynchronizeOrders, c dispatch.Completion[bool]) { a.OnComplete = c }),
	"retrieve_order":     bind(func(a *stores.RetrieveOrder, c dispatch.Completion[model.Order]) { a.OnComplete = c }),
	"search_orders":      bind(func(a *stores.SearchOrders, c dispatch.Completion[[]model.Order]) { a.OnComplete = c }),
	"update_order_status": bind(func(a *stores.UpdateOrderStatus, c dispatch.Completion[model.Order]) {
		a.OnComplete = c
	}),
	"update_order": bind(func(a *stores.UpdateOrder, c dispatch.Completion[model.Order]) { a.OnComplete = c }),
	"count_orders": bind(func(a *stores.CountOrders, c dispatch.Completion[int]) { a.OnComplete = c }),
	"reset_orders": bind(func(a *stores.ResetStoredOrders, c dispatch.Completion[int]) { a.OnComplete = c }),

	"synchronize_products": bind(func(a *stores.SynchronizeProducts, c dispatch.Completion[bool]) { a.OnComplete = c }),
	"retrieve_product":     bind(func(a *stores.RetrieveProduct, c dispatch.Completion[model.Product]) { a.OnComplete = c }),
	"retrieve_products": bind(func(a *stores.RetrieveProducts, c dispatch.Completion[[]model.Product]) {
		a.OnComplete = c
	}),
	"search_products": bind(func(a *stores.SearchProducts, c dispatch.Completion[[]model.Product]) {
		a.OnComplete = c
	}),
	"update_product": bind(func(a *stores.UpdateProduct, c dispatch.Completion[model.Product]) { a.OnComplete = c }),
	"delete_product": bind(func(a *stores.DeleteProduct, c dispatch.Completion[model.Product]) { a.OnComplete = c }),
	"reset_products": bind(func(a *stores.ResetStoredProducts, c dispatch.Completion[int]) { a.OnComplete = c }),

	"synchronize_refunds": bind(func(a *stores.SynchronizeRefunds, c dispatch.Completion[bool]) { a.OnComplete = c }),
	"retrieve_refund":     bind(func(a *stores.RetrieveRefund, c dispatch.Completion[model.Refund]) { a.OnComplete = c }),
	"create_refund":       bind(func(a *stores.CreateRefund, c dispatch.Completion[model.Refund]) { a.OnComplete = c }),
	"reset_refunds":       bind(func(a *stores.ResetStoredRefunds, c dispatch.Completion[int]) { a.OnComplete = c }),

	"synchronize_product_tags": bind(func(a *stores.SynchronizeAllProductTags, c dispatch.Completion[int]) {
		a.OnComplete = c
	}),
	"add_product_tags": bind(func(a *stores.AddProductTags, c dispatch.Completion[[]model.ProductTag]) {
		a.OnComplete = c
	}),
	"delete_product_tags": bind(func(a *stores.DeleteProductTags, c dispatch.Completion[[]model.ProductTag]) {
		a.OnComplete = c
	}),
	"reset_product_tags": bind(func(a *stores.ResetStoredProductTags, c dispatch.Completion[int]) { a.OnComplete = c }),

	"synchronize_product_attributes": bind(func(a *stores.SynchronizeProductAttributes, c dispatch.Completion[[]model.StoreAttribute]) {
		a.OnComplete = c
	}),
	"add_product_attribute": bind(func(a *stores.AddProductAttribute, c dispatch.Completion[model.StoreAttribute]) {
		a.OnComplete = c
	}),
	"update_product_attribute": bind(func(a *stores.UpdateProductAttribute, c dispatch.Completion[model.StoreAttribute]) {
		a.OnComplete = c
	}),
	"delete_product_attribute": bind(func(a *stores.DeleteProductAttribute, c dispatch.Completion[model.StoreAttribute]) {
		a.OnComplete = c
	}),

	"synchronize_shipping_classes": bind(func(a *stores.SynchronizeShippingClasses, c dispatch.Completion[bool]) {
		a.OnComplete = c
	}),
	"retrieve_shipping_class": bind(func(a *stores.RetrieveShippingClass, c dispatch.Completion[model.ShippingClass]) {
		a.OnComplete = c
	}),

	"synchronize_tracking": bind(func(a *stores.SynchronizeShipmentTracking, c dispatch.Completion[[]model.ShipmentTracking]) {
		a.OnComplete = c
	}),
	"add_tracking":    bind(func(a *stores.AddTracking, c dispatch.Completion[model.ShipmentTracking]) { a.OnComplete = c }),
	"delete_tracking": bind(func(a *stores.DeleteTracking, c dispatch.Completion[bool]) { a.OnComplete = c }),

	"synchronize_general_settings": bind(func(a *stores.SynchronizeGeneralSettings, c dispatch.Completion[[]model.SiteSetting]) {
		a.OnComplete = c
	}),
	"synchronize_product_settings": bind(func(a *stores.SynchronizeProductSettings, c dispatch.Completion[[]model.SiteSetting]) {
		a.OnComplete = c
	}),

	"retrieve_stats": bind(func(a *stores.RetrieveStats, c dispatch.Completion[stores.StatsReport]) { a.OnComplete = c }),
	"reset_stats":    bind(func(a *stores.ResetStoredStats, c dispatch.Completion[int]) { a.OnComplete = c }),
}

// ActionNames lists the actions a scenario step may name.
func ActionNames() []string {
	names := make([]string, 0, len(actions))
	for name := range actions {
		names = append(names, name)
	}
	return names
}

// encodeArgs renders step arguments as JSON for an action struct. Keys are
// written in snake_case; each key containing underscores also gets an
// underscore-free alias so untagged Go fields ("page_size" for PageSize)
// match as well as JSON-tagged model fields ("order_id"). The scenario site
// and a positive default page size are added when the step names none.
func encodeArgs(args map[string]any, site int64, pageSize int) ([]byte, error) {
	out, _ := aliasKeys(args).(map[string]any)
	if out == nil {
		out = map[string]any{}
	}
	if _, ok := out["site"]; !ok {
		out["site"] = site
	}
	if _, ok := out["page_size"]; !ok && pageSize > 0 {
		out["pagesize"] = pageSize
	}
	return json.Marshal(out)
}

func aliasKeys(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			elem = aliasKeys(elem)
			out[k] = elem
			if alias := strings.ReplaceAll(k, "_", ""); alias != k {
				if _, taken := val[alias]; !taken {
					out[alias] = elem
				}
			}
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = aliasKeys(elem)
		}
		return out
	default:
		return v
	}
}

// Classify names the outcome class of an action error.
func Classify(err error) string {
	var re *remote.Error
	switch {
	case err == nil:
		return OutcomeOK
	case stores.IsValidationError(err):
		return OutcomeValidation
	case errors.As(err, &re) && re.Kind == remote.KindNotFound && re.Code == remote.CodeNoRoute:
		return OutcomeNoRoute
	case remote.IsResourceNotFound(err):
		return OutcomeNotFound
	case remote.IsInvalidParameter(err):
		return OutcomeInvalidParameter
	case remote.IsTransport(err):
		return OutcomeTransport
	default:
		return OutcomeError
	}
}

// injectedError builds the remote error injected for kind.
func injectedError(kind string) (error, bool) {
	switch kind {
	case OutcomeNotFound:
		return remote.NotFound("rest_invalid_id", "injected not found"), true
	case OutcomeNoRoute:
		return remote.NotFound(remote.CodeNoRoute, "injected missing route"), true
	case OutcomeInvalidParameter:
		return remote.InvalidParameter("injected invalid parameter"), true
	case OutcomeTransport:
		return remote.Transport(errors.New("injected transport failure")), true
	default:
		return nil, false
	}
}
