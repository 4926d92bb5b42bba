/*
Copyright 2024 The promql-lang Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package promql

// Function describes one entry of the builtin function catalogue
// (spec §3.4). VariadicModifier, when non-nil, means the final *k
// entries of ArgTypes may repeat zero or more times; the minimum
// argument count is len(ArgTypes) - k.
type Function struct {
	Name             string
	ReturnType       ValueType
	ArgTypes         []ValueType
	VariadicModifier *int
}

func variadic(k int) *int { return &k }

// MinArgs is the fewest arguments a call to f may supply.
func (f *Function) MinArgs() int {
	if f.VariadicModifier == nil {
		return len(f.ArgTypes)
	}
	return len(f.ArgTypes) - *f.VariadicModifier
}

// IsVariadic reports whether f accepts a variable argument count.
func (f *Function) IsVariadic() bool {
	return f.VariadicModifier != nil
}

// ArgTypeAt returns the expected type of the i-th argument (0-based),
// extending the final VariadicModifier types as many times as needed.
func (f *Function) ArgTypeAt(i int) ValueType {
	if i < len(f.ArgTypes) {
		return f.ArgTypes[i]
	}
	if f.VariadicModifier == nil || len(f.ArgTypes) == 0 {
		return ValueTypeNone
	}
	return f.ArgTypes[len(f.ArgTypes)-1]
}

// functions is the compile-time constant catalogue of builtin PromQL
// functions. It is process-wide immutable data (spec §5): nothing in
// this package mutates it after init.
var functions = buildFunctionCatalogue()

func buildFunctionCatalogue() map[string]*Function {
	fns := []*Function{
		{Name: "abs", ReturnType: ValueTypeVector, ArgTypes: []ValueType{ValueTypeVector}},
		{Name: "absent", ReturnType: ValueTypeVector, ArgTypes: []ValueType{ValueTypeVector}},
		{Name: "absent_over_time", ReturnType: ValueTypeVector, ArgTypes: []ValueType{ValueTypeMatrix}},
		{Name: "avg_over_time", ReturnType: ValueTypeVector, ArgTypes: []ValueType{ValueTypeMatrix}},
		{Name: "ceil", ReturnType: ValueTypeVector, ArgTypes: []ValueType{ValueTypeVector}},
		{Name: "changes", ReturnType: ValueTypeVector, ArgTypes: []ValueType{ValueTypeMatrix}},
		{Name: "clamp", ReturnType: ValueTypeVector, ArgTypes: []ValueType{ValueTypeVector, ValueTypeScalar, ValueTypeScalar}},
		{Name: "clamp_max", ReturnType: ValueTypeVector, ArgTypes: []ValueType{ValueTypeVector, ValueTypeScalar}},
		{Name: "clamp_min", ReturnType: ValueTypeVector, ArgTypes: []ValueType{ValueTypeVector, ValueTypeScalar}},
		{Name: "day_of_month", ReturnType: ValueTypeVector, ArgTypes: []ValueType{ValueTypeVector}, VariadicModifier: variadic(1)},
		{Name: "day_of_week", ReturnType: ValueTypeVector, ArgTypes: []ValueType{ValueTypeVector}, VariadicModifier: variadic(1)},
		{Name: "day_of_year", ReturnType: ValueTypeVector, ArgTypes: []ValueType{ValueTypeVector}, VariadicModifier: variadic(1)},
		{Name: "days_in_month", ReturnType: ValueTypeVector, ArgTypes: []ValueType{ValueTypeVector}, VariadicModifier: variadic(1)},
		{Name: "delta", ReturnType: ValueTypeVector, ArgTypes: []ValueType{ValueTypeMatrix}},
		{Name: "deriv", ReturnType: ValueTypeVector, ArgTypes: []ValueType{ValueTypeMatrix}},
		{Name: "exp", ReturnType: ValueTypeVector, ArgTypes: []ValueType{ValueTypeVector}},
		{Name: "floor", ReturnType: ValueTypeVector, ArgTypes: []ValueType{ValueTypeVector}},
		{Name: "histogram_count", ReturnType: ValueTypeVector, ArgTypes: []ValueType{ValueTypeVector}},
		{Name: "histogram_sum", ReturnType: ValueTypeVector, ArgTypes: []ValueType{ValueTypeVector}},
		{Name: "histogram_fraction", ReturnType: ValueTypeVector, ArgTypes: []ValueType{ValueTypeScalar, ValueTypeScalar, ValueTypeVector}},
		{Name: "histogram_quantile", ReturnType: ValueTypeVector, ArgTypes: []ValueType{ValueTypeScalar, ValueTypeVector}},
		{Name: "holt_winters", ReturnType: ValueTypeVector, ArgTypes: []ValueType{ValueTypeMatrix, ValueTypeScalar, ValueTypeScalar}},
		{Name: "hour", ReturnType: ValueTypeVector, ArgTypes: []ValueType{ValueTypeVector}, VariadicModifier: variadic(1)},
		{Name: "idelta", ReturnType: ValueTypeVector, ArgTypes: []ValueType{ValueTypeMatrix}},
		{Name: "increase", ReturnType: ValueTypeVector, ArgTypes: []ValueType{ValueTypeMatrix}},
		{Name: "irate", ReturnType: ValueTypeVector, ArgTypes: []ValueType{ValueTypeMatrix}},
		{Name: "label_join", ReturnType: ValueTypeVector, ArgTypes: []ValueType{ValueTypeVector, ValueTypeString, ValueTypeString, ValueTypeString}, VariadicModifier: variadic(1)},
		{Name: "label_replace", ReturnType: ValueTypeVector, ArgTypes: []ValueType{ValueTypeVector, ValueTypeString, ValueTypeString, ValueTypeString, ValueTypeString}},
		{Name: "ln", ReturnType: ValueTypeVector, ArgTypes: []ValueType{ValueTypeVector}},
		{Name: "log2", ReturnType: ValueTypeVector, ArgTypes: []ValueType{ValueTypeVector}},
		{Name: "log10", ReturnType: ValueTypeVector, ArgTypes: []ValueType{ValueTypeVector}},
		{Name: "minute", ReturnType: ValueTypeVector, ArgTypes: []ValueType{ValueTypeVector}, VariadicModifier: variadic(1)},
		{Name: "month", ReturnType: ValueTypeVector, ArgTypes: []ValueType{ValueTypeVector}, VariadicModifier: variadic(1)},
		{Name: "predict_linear", ReturnType: ValueTypeVector, ArgTypes: []ValueType{ValueTypeMatrix, ValueTypeScalar}},
		{Name: "rate", ReturnType: ValueTypeVector, ArgTypes: []ValueType{ValueTypeMatrix}},
		{Name: "resets", ReturnType: ValueTypeVector, ArgTypes: []ValueType{ValueTypeMatrix}},
		{Name: "round", ReturnType: ValueTypeVector, ArgTypes: []ValueType{ValueTypeVector, ValueTypeScalar}, VariadicModifier: variadic(1)},
		{Name: "scalar", ReturnType: ValueTypeScalar, ArgTypes: []ValueType{ValueTypeVector}},
		{Name: "sgn", ReturnType: ValueTypeVector, ArgTypes: []ValueType{ValueTypeVector}},
		{Name: "sort", ReturnType: ValueTypeVector, ArgTypes: []ValueType{ValueTypeVector}},
		{Name: "sort_desc", ReturnType: ValueTypeVector, ArgTypes: []ValueType{ValueTypeVector}},
		{Name: "sqrt", ReturnType: ValueTypeVector, ArgTypes: []ValueType{ValueTypeVector}},
		{Name: "time", ReturnType: ValueTypeScalar, ArgTypes: nil},
		{Name: "timestamp", ReturnType: ValueTypeVector, ArgTypes: []ValueType{ValueTypeVector}},
		{Name: "vector", ReturnType: ValueTypeVector, ArgTypes: []ValueType{ValueTypeScalar}},
		{Name: "year", ReturnType: ValueTypeVector, ArgTypes: []ValueType{ValueTypeVector}, VariadicModifier: variadic(1)},

		{Name: "max_over_time", ReturnType: ValueTypeVector, ArgTypes: []ValueType{ValueTypeMatrix}},
		{Name: "min_over_time", ReturnType: ValueTypeVector, ArgTypes: []ValueType{ValueTypeMatrix}},
		{Name: "sum_over_time", ReturnType: ValueTypeVector, ArgTypes: []ValueType{ValueTypeMatrix}},
		{Name: "count_over_time", ReturnType: ValueTypeVector, ArgTypes: []ValueType{ValueTypeMatrix}},
		{Name: "quantile_over_time", ReturnType: ValueTypeVector, ArgTypes: []ValueType{ValueTypeScalar, ValueTypeMatrix}},
		{Name: "stddev_over_time", ReturnType: ValueTypeVector, ArgTypes: []ValueType{ValueTypeMatrix}},
		{Name: "stdvar_over_time", ReturnType: ValueTypeVector, ArgTypes: []ValueType{ValueTypeMatrix}},
		{Name: "last_over_time", ReturnType: ValueTypeVector, ArgTypes: []ValueType{ValueTypeMatrix}},
		{Name: "present_over_time", ReturnType: ValueTypeVector, ArgTypes: []ValueType{ValueTypeMatrix}},
	}

	out := make(map[string]*Function, len(fns))
	for _, fn := range fns {
		out[fn.Name] = fn
	}
	return out
}

// LookupFunction returns the catalogued Function for a case-sensitive
// PromQL function name, or nil if name is not a known function.
func LookupFunction(name string) *Function {
	return functions[name]
}

// FunctionNames returns every catalogued function name, unsorted.
func FunctionNames() []string {
	names := make([]string, 0, len(functions))
	for name := range functions {
		names = append(names, name)
	}
	return names
}

// AggregateOperator describes one entry of the aggregate-operator
// catalogue (spec §3.4). A non-nil ParameterType means the aggregate
// takes two arguments, the first of that type.
type AggregateOperator struct {
	Name          string
	ParameterType *ValueType
}

func paramType(t ValueType) *ValueType { return &t }

var aggregateOperators = buildAggregateCatalogue()

func buildAggregateCatalogue() map[string]*AggregateOperator {
	scalarParam := paramType(ValueTypeScalar)
	stringParam := paramType(ValueTypeString)
	ops := []*AggregateOperator{
		{Name: "sum"},
		{Name: "min"},
		{Name: "max"},
		{Name: "avg"},
		{Name: "group"},
		{Name: "stddev"},
		{Name: "stdvar"},
		{Name: "count"},
		{Name: "count_values", ParameterType: stringParam},
		{Name: "bottomk", ParameterType: scalarParam},
		{Name: "topk", ParameterType: scalarParam},
		{Name: "quantile", ParameterType: scalarParam},
	}
	out := make(map[string]*AggregateOperator, len(ops))
	for _, op := range ops {
		out[op.Name] = op
	}
	return out
}

// LookupAggregate returns the catalogued AggregateOperator for a
// case-sensitive aggregate name, or nil if name is not an aggregate.
func LookupAggregate(name string) *AggregateOperator {
	return aggregateOperators[name]
}

// AggregateNames returns every catalogued aggregate operator name,
// unsorted.
func AggregateNames() []string {
	names := make([]string, 0, len(aggregateOperators))
	for name := range aggregateOperators {
		names = append(names, name)
	}
	return names
}

// isAggregateName reports a case-insensitive match, matching the
// lexer's classification rule (spec §4.1 rule 8).
func isAggregateName(lowered string) bool {
	_, ok := aggregateOperators[lowered]
	return ok
}
