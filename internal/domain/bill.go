package domain

import "sort"

// Bill — производное представление одного оформления: строки заказов,
// сгруппированные по общему номеру. Нигде не хранится, строится на чтение.
type Bill struct {
	BatchNo int64
	// TotalAmountMinor — сумма AmountMinor всех строк счёта.
	TotalAmountMinor int64
	// LineCount — количество строк в счёте.
	LineCount int
	// Address — декодированный снапшот адреса; битый снапшот даёт пустой адрес.
	Address Address
	Orders  []Order
}

// BuildBills группирует строки заказов по BatchNo и сортирует счета
// по убыванию номера (свежие оформления первыми).
func BuildBills(orders []Order) []Bill {
	byBatch := make(map[int64]*Bill)
	sequence := make([]int64, 0)

	for _, order := range orders {
		bill, ok := byBatch[order.BatchNo]
		if !ok {
			bill = &Bill{
				BatchNo: order.BatchNo,
				Address: DecodeAddressLenient(order.AddressSnapshot),
			}
			byBatch[order.BatchNo] = bill
			sequence = append(sequence, order.BatchNo)
		}
		bill.TotalAmountMinor += order.AmountMinor
		bill.LineCount++
		bill.Orders = append(bill.Orders, order)
	}

	sort.Slice(sequence, func(i, j int) bool { return sequence[i] > sequence[j] })

	bills := make([]Bill, 0, len(sequence))
	for _, batchNo := range sequence {
		bills = append(bills, *byBatch[batchNo])
	}
	return bills
}
